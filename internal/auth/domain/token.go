package domain

import "time"

// SessionTokens is what a successful login or refresh produces: a short-lived
// bearer access token for the response body and a refresh token destined for
// the HTTP-only cookie.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
	Remember     bool // persistence mode the refresh cookie must use
	ExpiresIn    time.Duration
}

// RevokedToken is a denylist entry for a consumed or logged-out refresh
// token, keyed by its jti claim. Rows become garbage once the token would
// have expired anyway and are purged by housekeeping.
type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
	CreatedAt time.Time
}
