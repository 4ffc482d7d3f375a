package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jobfolio/auth/internal/auth/domain"
	"github.com/jobfolio/auth/internal/auth/store"
	"github.com/jobfolio/auth/pkg/cryptox"
	"github.com/jobfolio/auth/pkg/jwtx"
	"github.com/jobfolio/auth/pkg/slogx"
)

var (
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrNoRefreshToken     = errors.New("no_refresh_token")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrTargetNotFound     = errors.New("target_not_found")
	ErrTargetInactive     = errors.New("target_inactive")
	ErrTargetIsAdmin      = errors.New("target_is_admin")
)

// TokenService owns credential verification and the full token lifecycle:
// login, refresh rotation, logout revocation and admin impersonation.
type TokenService struct {
	Store            store.Store
	AccessCodec      *jwtx.Codec
	RefreshCodec     *jwtx.Codec
	AccessTTL        time.Duration
	RefreshTTL       time.Duration // remembered sessions
	SessionTTL       time.Duration // ceiling for non-remembered sessions
	ImpersonationTTL time.Duration
}

// Login verifies the email/password pair and issues a fresh token pair.
//
// The three failure modes stay distinct on purpose: unknown account,
// wrong password and deactivated account map to different HTTP statuses.
func (s *TokenService) Login(ctx context.Context, email, password string, remember bool) (domain.User, domain.SessionTokens, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.SessionTokens{}, ErrUserNotFound
		}
		return domain.User{}, domain.SessionTokens{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		l.Info("password verification failed", "user_id", u.ID)
		return domain.User{}, domain.SessionTokens{}, ErrInvalidCredentials
	}

	if !u.Active {
		return domain.User{}, domain.SessionTokens{}, ErrAccountInactive
	}

	tokens, err := s.issuePair(u, remember, now)
	if err != nil {
		return domain.User{}, domain.SessionTokens{}, err
	}
	return u, tokens, nil
}

// Rotate exchanges a valid refresh token for a new token pair and denylists
// the consumed token's jti so it cannot be replayed. The remember flag is
// carried over from the old token so the cookie's persistence mode survives
// rotation.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (domain.User, domain.SessionTokens, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	if refreshToken == "" {
		return domain.User{}, domain.SessionTokens{}, ErrNoRefreshToken
	}

	claims, err := s.RefreshCodec.Verify(refreshToken)
	if err != nil {
		return domain.User{}, domain.SessionTokens{}, ErrInvalidRefresh
	}
	if claims.TokenType != jwtx.TokenTypeRefresh {
		// An access token presented on the refresh path is an attack or a
		// client bug; either way it is not a refresh token.
		return domain.User{}, domain.SessionTokens{}, ErrInvalidRefresh
	}

	revoked, err := s.Store.RevokedTokens().IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return domain.User{}, domain.SessionTokens{}, err
	}
	if revoked {
		l.Warn("replay of rotated refresh token", "user_id", claims.Subject, "jti", claims.ID)
		return domain.User{}, domain.SessionTokens{}, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.SessionTokens{}, ErrInvalidRefresh
		}
		return domain.User{}, domain.SessionTokens{}, err
	}
	if !u.Active {
		return domain.User{}, domain.SessionTokens{}, ErrAccountInactive
	}

	tokens, err := s.issuePair(u, claims.Remember, now)
	if err != nil {
		return domain.User{}, domain.SessionTokens{}, err
	}

	// Denylist the consumed jti last, once the new pair exists. Role changes
	// are picked up here because the access token re-reads the store row.
	if err := s.Store.RevokedTokens().RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return domain.User{}, domain.SessionTokens{}, err
	}

	return u, tokens, nil
}

// Logout denylists the presented refresh token if it parses. Invalid or
// absent tokens are not an error: logout always succeeds from the client's
// perspective and the handler clears the cookie regardless.
func (s *TokenService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.RefreshCodec.Verify(refreshToken)
	if err != nil || claims.TokenType != jwtx.TokenTypeRefresh {
		return nil
	}
	return s.Store.RevokedTokens().RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Impersonate mints a short-lived access token for the target user with the
// admin recorded in the act claim. No refresh token is issued, so the
// impersonated session cannot outlive the short TTL.
func (s *TokenService) Impersonate(ctx context.Context, adminID, targetID string) (domain.User, domain.SessionTokens, error) {
	l := slogx.FromContext(ctx)
	now := time.Now()

	target, err := s.Store.Users().GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.SessionTokens{}, ErrTargetNotFound
		}
		return domain.User{}, domain.SessionTokens{}, err
	}

	if !target.Active {
		return domain.User{}, domain.SessionTokens{}, ErrTargetInactive
	}
	if target.IsAdmin() {
		return domain.User{}, domain.SessionTokens{}, ErrTargetIsAdmin
	}

	claims := jwtx.NewAccessClaims(target.ID, target.Email, target.Role,
		s.AccessCodec.Issuer(), s.ImpersonationTTL, now)
	claims.ActorID = adminID

	access, err := s.AccessCodec.Sign(claims)
	if err != nil {
		return domain.User{}, domain.SessionTokens{}, err
	}

	l.Info("impersonation token minted", "admin_id", adminID, "target_id", targetID)

	return target, domain.SessionTokens{
		AccessToken: access,
		ExpiresIn:   s.ImpersonationTTL,
	}, nil
}

// IssueSession mints a token pair for an already-authenticated user. Invite
// redemption uses this to log the new admin straight in.
func (s *TokenService) IssueSession(u domain.User, remember bool) (domain.SessionTokens, error) {
	return s.issuePair(u, remember, time.Now())
}

func (s *TokenService) issuePair(u domain.User, remember bool, now time.Time) (domain.SessionTokens, error) {
	access, err := s.AccessCodec.Sign(
		jwtx.NewAccessClaims(u.ID, u.Email, u.Role, s.AccessCodec.Issuer(), s.AccessTTL, now))
	if err != nil {
		return domain.SessionTokens{}, err
	}

	refreshTTL := s.RefreshTTL
	if !remember {
		refreshTTL = s.SessionTTL
	}
	refresh, err := s.RefreshCodec.Sign(
		jwtx.NewRefreshClaims(u.ID, s.RefreshCodec.Issuer(), remember, refreshTTL, now))
	if err != nil {
		return domain.SessionTokens{}, err
	}

	return domain.SessionTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		Remember:     remember,
		ExpiresIn:    s.AccessTTL,
	}, nil
}
