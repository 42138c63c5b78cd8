package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

// UserIDFromContext returns the authenticated subject id injected by
// AuthnMiddleware, or "" when the request is unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}
