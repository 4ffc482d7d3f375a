package http

import (
	"errors"
	"net/http"

	"github.com/jobfolio/auth/internal/auth/service"
	"github.com/jobfolio/auth/pkg/authsdk"
	"github.com/jobfolio/auth/pkg/httpx"
	"github.com/jobfolio/auth/pkg/slogx"
)

type MeHandler struct {
	UserService *service.UserService
}

// ServeHTTP handles GET /auth/me. The account is re-read from the store so
// the response reflects changes since the token was minted; the claims only
// contribute the impersonation marker.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated, "Authentication required")
		return
	}

	user, err := h.UserService.GetUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// The account was deleted while the token was still valid.
			httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeUnauthenticated, "Account no longer exists")
			return
		}
		slogx.FromContext(ctx).Error("failed to load current user", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Failed to load account")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MeResponse{
		User:           userInfo(user),
		ImpersonatedBy: claims.ActorID,
	})
}
