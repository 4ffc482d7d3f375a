package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Admin operations. These all require the session user to hold the admin
// role; the server answers 403 otherwise.

// CreateInvite mints a single-use admin invite for the given email. The
// returned token is shown exactly once.
func (s *Session) CreateInvite(ctx context.Context, email string, ttlMinutes int) (InviteCreateResponse, error) {
	var out InviteCreateResponse
	err := s.doJSON(ctx, http.MethodPost, "/admin/invites", InviteCreateRequest{
		Email:      email,
		TTLMinutes: ttlMinutes,
	}, &out, http.StatusCreated)
	return out, err
}

// ListInvites returns every invite with its derived status.
func (s *Session) ListInvites(ctx context.Context) (InviteListResponse, error) {
	var out InviteListResponse
	err := s.doJSON(ctx, http.MethodGet, "/admin/invites", nil, &out, http.StatusOK)
	return out, err
}

// RevokeInvite deletes an unused invite.
func (s *Session) RevokeInvite(ctx context.Context, id string) error {
	resp, err := s.Do(ctx, http.MethodDelete, "/admin/invites/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Impersonate mints a short-lived session acting as the target user. The
// returned session cannot refresh; it simply expires.
func (s *Session) Impersonate(ctx context.Context, userID string) (*Session, error) {
	var out SessionResponse
	err := s.doJSON(ctx, http.MethodPost, "/admin/impersonate", ImpersonateRequest{
		UserID: userID,
	}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return newSession(s.client, out, false), nil
}

// ListUsers returns accounts matching the optional query string.
func (s *Session) ListUsers(ctx context.Context, query string) (UserListResponse, error) {
	path := "/admin/users"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out UserListResponse
	err := s.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK)
	return out, err
}

// GetUser fetches a single account.
func (s *Session) GetUser(ctx context.Context, id string) (UserInfo, error) {
	var out UserInfo
	err := s.doJSON(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(id), nil, &out, http.StatusOK)
	return out, err
}

// CreateUser provisions an account directly, without an invite.
func (s *Session) CreateUser(ctx context.Context, req UserCreateRequest) (UserInfo, error) {
	var out UserInfo
	err := s.doJSON(ctx, http.MethodPost, "/admin/users", req, &out, http.StatusCreated)
	return out, err
}

// UpdateUser applies a partial update to an account.
func (s *Session) UpdateUser(ctx context.Context, id string, req UserUpdateRequest) (UserInfo, error) {
	var out UserInfo
	err := s.doJSON(ctx, http.MethodPatch, "/admin/users/"+url.PathEscape(id), req, &out, http.StatusOK)
	return out, err
}

// DeleteUser removes an account.
func (s *Session) DeleteUser(ctx context.Context, id string) error {
	resp, err := s.Do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
