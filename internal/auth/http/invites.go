package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jobfolio/auth/internal/auth/service"
	"github.com/jobfolio/auth/pkg/authsdk"
	"github.com/jobfolio/auth/pkg/httpx"
	"github.com/jobfolio/auth/pkg/slogx"
)

// InvitesHandler serves the admin invite management endpoints. All routes
// sit behind AuthnMiddleware + RequireAdmin.
type InvitesHandler struct {
	InviteService *service.InviteService
}

// HandleCreate handles POST /admin/invites.
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.InviteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	adminID := httpx.UserIDFromContext(ctx)
	ttl := time.Duration(req.TTLMinutes) * time.Minute

	invite, token, err := h.InviteService.CreateInvite(ctx, req.Email, ttl, adminID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInviteRequest) {
			httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "A valid email is required")
			return
		}
		log.Error("failed to create invite", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Failed to create invite")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.InviteCreateResponse{
		ID:        invite.ID,
		Token:     token,
		Email:     invite.Email,
		ExpiresAt: invite.ExpiresAt,
	})
}

// HandleList handles GET /admin/invites.
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invites, err := h.InviteService.ListInvites(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invites", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Failed to list invites")
		return
	}

	now := time.Now().UTC()
	out := authsdk.InviteListResponse{Invites: make([]authsdk.InviteInfo, 0, len(invites))}
	for _, inv := range invites {
		out.Invites = append(out.Invites, authsdk.InviteInfo{
			ID:        inv.ID,
			Email:     inv.Email,
			Status:    inv.Status(now),
			ExpiresAt: inv.ExpiresAt,
			UsedAt:    inv.UsedAt,
			UsedBy:    inv.UsedBy,
			CreatedBy: inv.CreatedBy,
			CreatedAt: inv.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDelete handles DELETE /admin/invites/{id}.
func (h *InvitesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.InviteService.RevokeInvite(ctx, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteError(w, http.StatusNotFound, authsdk.ErrorCodeNotFound, "Invite not found")
		case errors.Is(err, service.ErrInviteAlreadyUsed):
			httpx.WriteError(w, http.StatusConflict, authsdk.ErrorCodeConflict, "Invite has already been redeemed")
		default:
			slogx.FromContext(ctx).Error("failed to revoke invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Failed to revoke invite")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
