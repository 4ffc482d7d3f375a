package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jobfolio/auth/internal/auth/service"
	"github.com/jobfolio/auth/pkg/authsdk"
	"github.com/jobfolio/auth/pkg/cryptox"
	"github.com/jobfolio/auth/pkg/httpx"
	"github.com/jobfolio/auth/pkg/slogx"
)

type RegisterAdminHandler struct {
	InviteService *service.InviteService
	TokenService  *service.TokenService
	Cookies       *CookieManager
}

// ServeHTTP handles POST /auth/register-admin. A valid invite token creates
// the admin account and logs it straight in. The refresh cookie is
// session-scoped; the new admin can opt into a remembered session by logging
// in again.
func (h *RegisterAdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	user, err := h.InviteService.RedeemInvite(ctx, req.Token, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInviteRequest):
			httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "token, username and password are required")
		case errors.Is(err, cryptox.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeWeakPassword,
				"Password must be at least 8 characters with upper and lower case letters, a digit and a symbol")
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInviteUnavailable, "Invite is invalid, expired or already used")
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			httpx.WriteError(w, http.StatusConflict, authsdk.ErrorCodeConflict, "An account with that email already exists")
		default:
			log.Error("invite redemption failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Registration failed")
		}
		return
	}

	tokens, err := h.TokenService.IssueSession(user, false)
	if err != nil {
		log.Error("failed to issue session for new admin", "err", err, "user_id", user.ID)
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Registration succeeded but login failed")
		return
	}

	h.Cookies.SetRefresh(w, tokens.RefreshToken, tokens.Remember)
	httpx.WriteJSON(w, http.StatusCreated, sessionResponse(user, tokens))
}
