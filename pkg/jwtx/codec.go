package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway tolerates small clock skew when validating exp/nbf.
const DefaultLeeway = 5 * time.Second

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)

// Codec signs and verifies compact HS256 tokens with a symmetric secret.
// Access and refresh tokens use separate Codec instances with distinct
// secrets, so a leaked access secret cannot mint refresh tokens.
type Codec struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewCodec returns a Codec for the given secret and issuer with DefaultLeeway.
func NewCodec(secret []byte, issuer string) *Codec {
	return &Codec{secret: secret, issuer: issuer, leeway: DefaultLeeway}
}

// NewCodecWithLeeway returns a Codec with an explicit clock-skew tolerance.
func NewCodecWithLeeway(secret []byte, issuer string, leeway time.Duration) *Codec {
	return &Codec{secret: secret, issuer: issuer, leeway: leeway}
}

// Issuer returns the issuer the codec stamps and validates.
func (c *Codec) Issuer() string { return c.issuer }

// Sign produces a signed compact token for the given claims.
func (c *Codec) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a compact token: signature, expiry (with
// leeway), not-before and issuer. On success it returns the decoded claims.
func (c *Codec) Verify(raw string) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(
		raw,
		&claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(c.leeway),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSig
	}

	if c.issuer != "" && claims.Issuer != c.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}

// mapParseError flattens golang-jwt's joined errors into our sentinel set.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
