package http

import (
	"errors"
	"net/http"

	"github.com/karhulabs/authd/internal/auth/domain"
	"github.com/karhulabs/authd/internal/auth/service"
	"github.com/karhulabs/authd/pkg/authsdk"
	"github.com/karhulabs/authd/pkg/httpx"
	"github.com/karhulabs/authd/pkg/slogx"
)

type MeHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Get the authenticated user
//	@Description	Returns the user record the presented session token belongs to.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MeResponse	"user"
//	@Failure		401	{object}	httpx.ErrorResponse	"missing or invalid token"
//	@Failure		404	{object}	httpx.ErrorResponse	"subject no longer exists"
//	@Failure		500	{object}	httpx.ErrorResponse
//	@Router			/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.AuthService.WhoAmI(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "User not found")
		default:
			log.Error("failed to load user", "user_id", userID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		User: publicUser(user, true),
	})
}

// publicUser maps a domain user to its public view. The password hash
// never crosses this boundary.
func publicUser(u domain.User, withCreatedAt bool) authsdk.User {
	view := authsdk.User{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role.String(),
	}
	if withCreatedAt {
		createdAt := u.CreatedAt
		view.CreatedAt = &createdAt
	}
	return view
}
