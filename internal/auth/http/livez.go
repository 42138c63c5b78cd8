package http

import (
	"net/http"
	"time"

	"github.com/karhulabs/authd/pkg/authsdk"
	"github.com/karhulabs/authd/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always returns 200 OK if the process is running.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
