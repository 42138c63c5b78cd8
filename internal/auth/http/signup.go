package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/karhulabs/authd/internal/auth/service"
	"github.com/karhulabs/authd/pkg/authsdk"
	"github.com/karhulabs/authd/pkg/httpx"
	"github.com/karhulabs/authd/pkg/slogx"
)

type SignupHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Register a new user
//	@Description	Creates a user account and returns a 7-day session token.
//	@Description	Role defaults to USER when omitted; only USER and ADMIN are accepted.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SignupRequest	true	"email, name, password, role?"
//	@Success		201		{object}	authsdk.SessionResponse	"token, user"
//	@Failure		400		{object}	httpx.ErrorResponse		"validation or duplicate email"
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.AuthService.Signup(ctx, service.SignupParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			httpx.WriteError(w, http.StatusBadRequest, "Email, name, and password are required")
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "Role must be either USER or ADMIN")
		case errors.Is(err, service.ErrDuplicateUser):
			// Kept at 400 rather than 409 for compatibility with existing clients.
			httpx.WriteError(w, http.StatusBadRequest, "User with this email already exists")
		default:
			log.Error("signup failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.SessionResponse{
		Token: session.Token,
		User:  publicUser(session.User, false),
	})
}
