package service

import (
	"context"
	"testing"

	"github.com/jobfolio/auth/internal/auth/domain"
	"github.com/jobfolio/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTokenService(st)

	seedUser(t, st, "alice@example.com", "Str0ng!pass", domain.RoleUser, true)
	seedUser(t, st, "frozen@example.com", "Str0ng!pass", domain.RoleUser, false)

	t.Run("success issues both tokens", func(t *testing.T) {
		user, tokens, err := svc.Login(ctx, "alice@example.com", "Str0ng!pass", true)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", user.Email)
		require.NotEmpty(t, tokens.AccessToken)
		require.NotEmpty(t, tokens.RefreshToken)
		require.True(t, tokens.Remember)

		claims, err := svc.AccessCodec.Verify(tokens.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, claims.Subject)
		require.Equal(t, domain.RoleUser, claims.Role)
		require.Equal(t, jwtx.TokenTypeAccess, claims.TokenType)
		require.Empty(t, claims.ActorID)

		refresh, err := svc.RefreshCodec.Verify(tokens.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, jwtx.TokenTypeRefresh, refresh.TokenType)
		require.True(t, refresh.Remember)
	})

	t.Run("email is case-insensitive", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "  ALICE@Example.COM ", "Str0ng!pass", false)
		require.NoError(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "Str0ng!pass", false)
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alice@example.com", "wrong-password", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "frozen@example.com", "Str0ng!pass", false)
		require.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestRotate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTokenService(st)

	user := seedUser(t, st, "bob@example.com", "Str0ng!pass", domain.RoleUser, true)

	t.Run("rotation issues fresh pair and preserves remember", func(t *testing.T) {
		_, tokens, err := svc.Login(ctx, "bob@example.com", "Str0ng!pass", true)
		require.NoError(t, err)

		rotatedUser, rotated, err := svc.Rotate(ctx, tokens.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, rotatedUser.ID)
		require.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)
		require.NotEqual(t, tokens.AccessToken, rotated.AccessToken)
		require.True(t, rotated.Remember)
	})

	t.Run("consumed token is rejected on replay", func(t *testing.T) {
		_, tokens, err := svc.Login(ctx, "bob@example.com", "Str0ng!pass", false)
		require.NoError(t, err)

		_, _, err = svc.Rotate(ctx, tokens.RefreshToken)
		require.NoError(t, err)

		_, _, err = svc.Rotate(ctx, tokens.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("access token on the refresh path is rejected", func(t *testing.T) {
		_, tokens, err := svc.Login(ctx, "bob@example.com", "Str0ng!pass", false)
		require.NoError(t, err)

		_, _, err = svc.Rotate(ctx, tokens.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, _, err := svc.Rotate(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("empty token", func(t *testing.T) {
		_, _, err := svc.Rotate(ctx, "")
		require.ErrorIs(t, err, ErrNoRefreshToken)
	})

	t.Run("rotation re-reads role from the store", func(t *testing.T) {
		_, tokens, err := svc.Login(ctx, "bob@example.com", "Str0ng!pass", false)
		require.NoError(t, err)

		require.NoError(t, st.Users().UpdateRole(ctx, user.ID, domain.RoleAdmin))
		t.Cleanup(func() {
			require.NoError(t, st.Users().UpdateRole(ctx, user.ID, domain.RoleUser))
		})

		_, rotated, err := svc.Rotate(ctx, tokens.RefreshToken)
		require.NoError(t, err)

		claims, err := svc.AccessCodec.Verify(rotated.AccessToken)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("deactivated account cannot rotate", func(t *testing.T) {
		_, tokens, err := svc.Login(ctx, "bob@example.com", "Str0ng!pass", false)
		require.NoError(t, err)

		require.NoError(t, st.Users().SetActive(ctx, user.ID, false))
		t.Cleanup(func() {
			require.NoError(t, st.Users().SetActive(ctx, user.ID, true))
		})

		_, _, err = svc.Rotate(ctx, tokens.RefreshToken)
		require.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTokenService(st)

	seedUser(t, st, "carol@example.com", "Str0ng!pass", domain.RoleUser, true)

	t.Run("logged-out refresh token cannot rotate", func(t *testing.T) {
		_, tokens, err := svc.Login(ctx, "carol@example.com", "Str0ng!pass", false)
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))

		_, _, err = svc.Rotate(ctx, tokens.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("invalid or empty tokens are a no-op", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, ""))
		require.NoError(t, svc.Logout(ctx, "garbage"))
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		_, tokens, err := svc.Login(ctx, "carol@example.com", "Str0ng!pass", false)
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))
		require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))
	})
}

func TestImpersonate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTokenService(st)

	admin := seedUser(t, st, "root@example.com", "Str0ng!pass", domain.RoleAdmin, true)
	target := seedUser(t, st, "dave@example.com", "Str0ng!pass", domain.RoleUser, true)
	inactive := seedUser(t, st, "gone@example.com", "Str0ng!pass", domain.RoleUser, false)
	otherAdmin := seedUser(t, st, "root2@example.com", "Str0ng!pass", domain.RoleAdmin, true)

	t.Run("mints short-lived token with actor claim and no refresh", func(t *testing.T) {
		got, tokens, err := svc.Impersonate(ctx, admin.ID, target.ID)
		require.NoError(t, err)
		require.Equal(t, target.ID, got.ID)
		require.Empty(t, tokens.RefreshToken)

		claims, err := svc.AccessCodec.Verify(tokens.AccessToken)
		require.NoError(t, err)
		require.Equal(t, target.ID, claims.Subject)
		require.Equal(t, domain.RoleUser, claims.Role)
		require.Equal(t, admin.ID, claims.ActorID)
		require.True(t, claims.IsImpersonated())
	})

	t.Run("unknown target", func(t *testing.T) {
		_, _, err := svc.Impersonate(ctx, admin.ID, "no-such-user")
		require.ErrorIs(t, err, ErrTargetNotFound)
	})

	t.Run("inactive target", func(t *testing.T) {
		_, _, err := svc.Impersonate(ctx, admin.ID, inactive.ID)
		require.ErrorIs(t, err, ErrTargetInactive)
	})

	t.Run("admin target", func(t *testing.T) {
		_, _, err := svc.Impersonate(ctx, admin.ID, otherAdmin.ID)
		require.ErrorIs(t, err, ErrTargetIsAdmin)
	})
}
