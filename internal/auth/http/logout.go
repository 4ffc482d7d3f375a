package http

import (
	"net/http"

	"github.com/jobfolio/auth/internal/auth/service"
	"github.com/jobfolio/auth/pkg/httpx"
	"github.com/jobfolio/auth/pkg/slogx"
)

type LogoutHandler struct {
	TokenService *service.TokenService
	Cookies      *CookieManager
}

// ServeHTTP handles POST /auth/logout. Logout never fails from the client's
// point of view: the cookie is cleared regardless, and a valid refresh token
// is denylisted on a best-effort basis.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.TokenService.Logout(ctx, refreshTokenFromRequest(r)); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke refresh token on logout", "err", err)
	}

	h.Cookies.ClearRefresh(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
