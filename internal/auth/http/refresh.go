package http

import (
	"errors"
	"net/http"

	"github.com/jobfolio/auth/internal/auth/service"
	"github.com/jobfolio/auth/pkg/authsdk"
	"github.com/jobfolio/auth/pkg/httpx"
	"github.com/jobfolio/auth/pkg/slogx"
)

type RefreshHandler struct {
	TokenService *service.TokenService
	Cookies      *CookieManager
}

// ServeHTTP handles POST /auth/refresh. The refresh token arrives in the
// HttpOnly cookie; a valid one is exchanged for a fresh pair and the old jti
// is denylisted. On an invalid token or a deactivated account the cookie is
// cleared so the client stops retrying a dead session.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, tokens, err := h.TokenService.Rotate(ctx, refreshTokenFromRequest(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoRefreshToken):
			httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated, "Missing refresh token")
		case errors.Is(err, service.ErrInvalidRefresh):
			h.Cookies.ClearRefresh(w)
			httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated, "Invalid or expired refresh token")
		case errors.Is(err, service.ErrAccountInactive):
			h.Cookies.ClearRefresh(w)
			httpx.WriteError(w, http.StatusForbidden, authsdk.ErrorCodeAccountInactive, "Account is deactivated")
		default:
			log.Error("refresh failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Refresh failed")
		}
		return
	}

	h.Cookies.SetRefresh(w, tokens.RefreshToken, tokens.Remember)
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(user, tokens))
}
