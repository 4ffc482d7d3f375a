package store

import (
	"context"
	"errors"
	"time"

	"github.com/jobfolio/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Invites() Invites
	RevokedTokens() RevokedTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run multi-step operations that must be atomic
	// (invite redemption, last-admin guarded mutations).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type UserFilter struct {
	Query  string // matches username or email, substring
	Role   string // "" means any
	Active *bool  // nil means any
	Limit  int    // 0 means driver default
	Offset int
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login; callers lowercase the email first.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns users matching the filter, newest first.
	ListUsers(ctx context.Context, f UserFilter) ([]domain.User, error)

	// UpdateUsername mutates the username and bumps updated_at.
	UpdateUsername(ctx context.Context, userID, username string) error

	// UpdateEmail mutates the email; returns ErrAlreadyExists on conflict.
	UpdateEmail(ctx context.Context, userID, email string) error

	// UpdateRole sets the role and bumps updated_at.
	UpdateRole(ctx context.Context, userID, role string) error

	// SetActive flips the active flag and bumps updated_at.
	SetActive(ctx context.Context, userID string, active bool) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// DeleteUser removes the row.
	DeleteUser(ctx context.Context, userID string) error

	// CountActiveAdmins reports how many active administrators exist. Last-admin
	// protection calls this inside the same transaction as the mutation.
	CountActiveAdmins(ctx context.Context) (int, error)
}

type Invites interface {
	// CreateInvite writes a new invite (token_hash is the SHA-256 fingerprint
	// of the opaque invite secret).
	CreateInvite(ctx context.Context, inv domain.Invite) error

	// GetInviteByID returns an invite regardless of state.
	GetInviteByID(ctx context.Context, id string) (domain.Invite, error)

	// ConsumeInvite atomically marks the not-used, not-expired invite matching
	// the fingerprint as used. It returns the consumed invite, or ErrNotFound
	// when no redeemable invite matched, including the case where a
	// concurrent redeemer won the conditional update.
	ConsumeInvite(ctx context.Context, tokenHash string, now time.Time) (domain.Invite, error)

	// SetInviteRedeemer records which user a consumed invite created. Split
	// from ConsumeInvite so the redeeming transaction can insert the user row
	// before pointing the invite's used_by foreign key at it.
	SetInviteRedeemer(ctx context.Context, id, userID string) error

	// ListInvites returns all invites, newest first.
	ListInvites(ctx context.Context) ([]domain.Invite, error)

	// DeleteInvite removes an invite row. Callers enforce the used_at guard.
	DeleteInvite(ctx context.Context, id string) error

	// DeleteExpiredInvites is housekeeping; used invites are kept for audit.
	DeleteExpiredInvites(ctx context.Context, now time.Time) error
}

type RevokedTokens interface {
	// RevokeToken denylists a refresh token jti until its natural expiry.
	// Revoking an already-revoked jti is a no-op.
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error

	// IsTokenRevoked reports whether the jti has been denylisted.
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpiredRevocations is housekeeping.
	DeleteExpiredRevocations(ctx context.Context, now time.Time) error
}
