package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jobfolio/auth/internal/auth/service"
	"github.com/jobfolio/auth/pkg/authsdk"
	"github.com/jobfolio/auth/pkg/httpx"
	"github.com/jobfolio/auth/pkg/slogx"
)

type LoginHandler struct {
	TokenService *service.TokenService
	Cookies      *CookieManager
}

// ServeHTTP handles POST /auth/login. The three failure modes are kept
// distinct so a frontend can tell "no such account" from "wrong password"
// from "account disabled".
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "email and password are required")
		return
	}

	user, tokens, err := h.TokenService.Login(ctx, req.Email, req.Password, req.Remember)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, authsdk.ErrorCodeNotFound, "No account with that email")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated, "Invalid credentials")
		case errors.Is(err, service.ErrAccountInactive):
			httpx.WriteError(w, http.StatusForbidden, authsdk.ErrorCodeAccountInactive, "Account is deactivated")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Login failed")
		}
		return
	}

	h.Cookies.SetRefresh(w, tokens.RefreshToken, tokens.Remember)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(user, tokens))
}
