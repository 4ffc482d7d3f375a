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

type ImpersonateHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles POST /admin/impersonate. The minted token carries the
// target's identity with the admin recorded in the act claim. No refresh
// cookie is set: the impersonated session cannot be extended.
func (h *ImpersonateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.ImpersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.UserID == "" {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "user_id is required")
		return
	}

	adminID := httpx.UserIDFromContext(ctx)

	target, tokens, err := h.TokenService.Impersonate(ctx, adminID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTargetNotFound):
			httpx.WriteError(w, http.StatusNotFound, authsdk.ErrorCodeNotFound, "User not found")
		case errors.Is(err, service.ErrTargetInactive):
			httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Cannot impersonate a deactivated user")
		case errors.Is(err, service.ErrTargetIsAdmin):
			httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Cannot impersonate an administrator")
		default:
			log.Error("impersonation failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Impersonation failed")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionResponse(target, tokens))
}
