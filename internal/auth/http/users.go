package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/jobfolio/auth/internal/auth/service"
	"github.com/jobfolio/auth/internal/auth/store"
	"github.com/jobfolio/auth/pkg/authsdk"
	"github.com/jobfolio/auth/pkg/cryptox"
	"github.com/jobfolio/auth/pkg/httpx"
	"github.com/jobfolio/auth/pkg/slogx"
)

// UsersHandler serves the admin user management endpoints. All routes sit
// behind AuthnMiddleware + RequireAdmin.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleList handles GET /admin/users. Supports q (substring on username or
// email), role, active, limit and offset query parameters.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := store.UserFilter{
		Query: q.Get("q"),
		Role:  q.Get("role"),
	}
	if v := q.Get("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		filter.Offset = v
	}

	users, err := h.UserService.ListUsers(ctx, filter)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Failed to list users")
		return
	}

	out := authsdk.UserListResponse{Users: make([]authsdk.UserInfo, 0, len(users))}
	for _, u := range users {
		out.Users = append(out.Users, userInfo(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /admin/users/{id}.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.UserService.GetUser(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusNotFound, authsdk.ErrorCodeNotFound, "User not found")
			return
		}
		slogx.FromContext(ctx).Error("failed to get user", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Failed to get user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfo(user))
}

// HandleCreate handles POST /admin/users.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	user, err := h.UserService.CreateUser(ctx, req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		h.writeUserError(ctx, w, err, "Failed to create user")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userInfo(user))
}

// HandleUpdate handles PATCH /admin/users/{id}.
func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	user, err := h.UserService.UpdateUser(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"), service.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		h.writeUserError(ctx, w, err, "Failed to update user")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfo(user))
}

// HandleDelete handles DELETE /admin/users/{id}.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.UserService.DeleteUser(ctx, httpx.UserIDFromContext(ctx), r.PathValue("id"))
	if err != nil {
		h.writeUserError(ctx, w, err, "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UsersHandler) writeUserError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, authsdk.ErrorCodeNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidUserRequest):
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "username and a valid email are required")
	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "role must be user or admin")
	case errors.Is(err, cryptox.ErrWeakPassword):
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeWeakPassword,
			"Password must be at least 8 characters with upper and lower case letters, a digit and a symbol")
	case errors.Is(err, service.ErrEmailAlreadyRegistered):
		httpx.WriteError(w, http.StatusConflict, authsdk.ErrorCodeConflict, "An account with that email already exists")
	case errors.Is(err, service.ErrLastAdmin):
		httpx.WriteError(w, http.StatusConflict, authsdk.ErrorCodeLastAdmin, "Cannot remove the last active administrator")
	case errors.Is(err, service.ErrSelfAction):
		httpx.WriteError(w, http.StatusBadRequest, authsdk.ErrorCodeSelfActionDenied, "Administrators cannot perform this action on their own account")
	default:
		slogx.FromContext(ctx).Error("user management operation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, authsdk.ErrorCodeServerError, fallback)
	}
}
