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

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Authenticates an email/password pair and returns a 7-day session token.
//	@Description	Unknown email and wrong password produce the identical response.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"email, password"
//	@Success		200		{object}	authsdk.SessionResponse	"token, user"
//	@Failure		400		{object}	httpx.ErrorResponse		"missing input"
//	@Failure		401		{object}	httpx.ErrorResponse		"invalid credentials"
//	@Failure		500		{object}	httpx.ErrorResponse
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			httpx.WriteError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			// One message for both unknown email and wrong password.
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.SessionResponse{
		Token: session.Token,
		User:  publicUser(session.User, false),
	})
}
