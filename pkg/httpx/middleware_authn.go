package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/karhulabs/authd/pkg/jwtx"
	"github.com/karhulabs/authd/pkg/slogx"
)

// AuthnMiddleware rejects requests without a valid bearer token before they
// reach the handler. Why a token failed verification (bad signature,
// expired, malformed) is logged but never detailed to the client.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "Authentication required")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				writeBearerError(w, "Invalid or expired token")
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant unauthorized response for bearer auth.
func writeBearerError(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, message)
}
