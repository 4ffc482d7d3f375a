package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short access tokens bound the exposure window of a
// stolen bearer token; refresh tokens trade that off for user convenience.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 10 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for remembered refresh
	// tokens.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour

	// DefaultSessionTokenTTL is the lifetime for refresh tokens issued without
	// the remember flag. There is no true server-side session, so this acts as
	// a signed ceiling on a typical browser session.
	DefaultSessionTokenTTL = 12 * time.Hour

	// DefaultImpersonationTTL is the lifetime for admin-minted impersonation
	// tokens. Kept short since no refresh token accompanies them.
	DefaultImpersonationTTL = 10 * time.Minute
)

// Token type discriminator values carried in the "typ" claim. Verifying the
// discriminator prevents a refresh token from being replayed as an access
// token and vice versa, on top of the per-type secrets.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the token claims used across the service. Additive changes only,
// to preserve compatibility with already-issued tokens.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the subject, for convenience on the consumer side.
	Email string `json:"email,omitempty"`

	// Role of the subject at issue time ("user" or "admin"). Stale until the
	// token naturally expires; issuance and refresh re-read the store.
	Role string `json:"role,omitempty"`

	// TokenType discriminates access vs refresh tokens.
	TokenType string `json:"typ,omitempty"`

	// Remember marks a refresh token as persistent so rotation can preserve
	// the cookie's persistence mode.
	Remember bool `json:"remember,omitempty"`

	// ActorID is the id of an admin acting on behalf of the subject. Only
	// present on impersonation access tokens, for audit purposes.
	ActorID string `json:"act,omitempty"`
}

// IsImpersonated reports whether the token was minted by an admin on behalf
// of the subject.
func (c Claims) IsImpersonated() bool { return c.ActorID != "" }

// NewAccessClaims builds minimally-correct access-token claims.
func NewAccessClaims(subject, email, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: registered(subject, issuer, ttl, now),
		Email:            email,
		Role:             role,
		TokenType:        TokenTypeAccess,
	}
}

// NewRefreshClaims builds refresh-token claims carrying the remember flag.
func NewRefreshClaims(subject, issuer string, remember bool, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: registered(subject, issuer, ttl, now),
		TokenType:        TokenTypeRefresh,
		Remember:         remember,
	}
}

func registered(subject, issuer string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}
