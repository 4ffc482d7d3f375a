package domain

import "time"

// Roles a user record can hold. There is deliberately no hierarchy beyond
// these two values.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string
	Username     string
	Email        string // unique, stored lowercased
	PasswordHash string // argon2id PHC encoded
	Role         string // RoleUser or RoleAdmin
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the record holds the administrator role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
