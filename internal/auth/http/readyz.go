package http

import (
	"net/http"
	"time"

	"github.com/karhulabs/authd/internal/auth/store"
	"github.com/karhulabs/authd/pkg/authsdk"
	"github.com/karhulabs/authd/pkg/httpx"
	"github.com/karhulabs/authd/pkg/jwtx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Returns service health and the status of critical dependencies.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store, signer *jwtx.HS256) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check database connectivity
		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		// Check the token signer with a sign/verify round-trip
		if err := signer.Check(); err != nil {
			checks.Signer = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
