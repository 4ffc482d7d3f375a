package authsdk

import "time"

// Request/response bodies shared between the HTTP handlers and the SDK
// client, so the two sides cannot drift apart.

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

// RegisterAdminRequest is the body for POST /auth/register-admin.
type RegisterAdminRequest struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserInfo is the public view of an account. Password material never leaves
// the server.
type UserInfo struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is returned by login, refresh, register-admin and
// impersonate. The refresh token itself travels in an HttpOnly cookie, never
// in the body.
type SessionResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"` // always "Bearer"
	ExpiresIn   int64    `json:"expires_in"` // access token lifetime, seconds
	User        UserInfo `json:"user"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	User UserInfo `json:"user"`

	// ImpersonatedBy is the admin id when this session is an impersonation.
	ImpersonatedBy string `json:"impersonated_by,omitempty"`
}

// InviteCreateRequest is the body for POST /admin/invites.
type InviteCreateRequest struct {
	Email      string `json:"email"`
	TTLMinutes int    `json:"ttl_minutes,omitempty"`
}

// InviteCreateResponse carries the raw invite token. It is shown exactly
// once; the server only stores a fingerprint.
type InviteCreateResponse struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InviteInfo is a single row in the invite listing.
type InviteInfo struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Status    string     `json:"status"` // active, used or expired
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	UsedBy    string     `json:"used_by,omitempty"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

// InviteListResponse is returned by GET /admin/invites.
type InviteListResponse struct {
	Invites []InviteInfo `json:"invites"`
}

// ImpersonateRequest is the body for POST /admin/impersonate.
type ImpersonateRequest struct {
	UserID string `json:"user_id"`
}

// UserCreateRequest is the body for POST /admin/users.
type UserCreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// UserUpdateRequest is the body for PATCH /admin/users/{id}. Absent fields
// are left untouched.
type UserUpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// UserListResponse is returned by GET /admin/users.
type UserListResponse struct {
	Users []UserInfo `json:"users"`
}

// HealthResponse is returned by the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency status on /readyz.
type HealthChecks struct {
	Database string `json:"database"`
}

// ErrorResponse is the error body used by every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
