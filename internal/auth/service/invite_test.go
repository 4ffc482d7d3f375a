package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jobfolio/auth/internal/auth/domain"
	"github.com/jobfolio/auth/internal/auth/store"
	"github.com/jobfolio/auth/pkg/cryptox"
	"github.com/jobfolio/auth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestCreateInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	t.Run("returns raw token and stores only the fingerprint", func(t *testing.T) {
		invite, token, err := svc.CreateInvite(ctx, "New.Admin@Example.com", time.Hour, "admin-1")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, "new.admin@example.com", invite.Email)
		require.Equal(t, cryptox.FingerprintToken(token), invite.TokenHash)
		require.NotContains(t, invite.TokenHash, token)

		stored, err := st.Invites().GetInviteByID(ctx, invite.ID)
		require.NoError(t, err)
		require.Nil(t, stored.UsedAt)
		require.Equal(t, domain.InviteStatusActive, stored.Status(time.Now()))
	})

	t.Run("zero ttl falls back to the default", func(t *testing.T) {
		invite, _, err := svc.CreateInvite(ctx, "later@example.com", 0, "admin-1")
		require.NoError(t, err)
		require.WithinDuration(t, time.Now().Add(DefaultInviteTTL), invite.ExpiresAt, time.Minute)
	})

	t.Run("rejects junk emails", func(t *testing.T) {
		_, _, err := svc.CreateInvite(ctx, "not-an-email", time.Hour, "admin-1")
		require.ErrorIs(t, err, ErrInvalidInviteRequest)
	})
}

func TestRedeemInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	t.Run("creates an active admin account", func(t *testing.T) {
		_, token, err := svc.CreateInvite(ctx, "eve@example.com", time.Hour, "admin-1")
		require.NoError(t, err)

		user, err := svc.RedeemInvite(ctx, token, "eve", "Str0ng!pass")
		require.NoError(t, err)
		require.Equal(t, "eve@example.com", user.Email)
		require.Equal(t, domain.RoleAdmin, user.Role)
		require.True(t, user.Active)

		// The ledger records who redeemed it.
		invites, err := svc.ListInvites(ctx)
		require.NoError(t, err)
		var found bool
		for _, inv := range invites {
			if inv.Email == "eve@example.com" {
				found = true
				require.Equal(t, domain.InviteStatusUsed, inv.Status(time.Now()))
				require.Equal(t, user.ID, inv.UsedBy)
			}
		}
		require.True(t, found)
	})

	t.Run("second redemption fails", func(t *testing.T) {
		_, token, err := svc.CreateInvite(ctx, "twice@example.com", time.Hour, "admin-1")
		require.NoError(t, err)

		_, err = svc.RedeemInvite(ctx, token, "first", "Str0ng!pass")
		require.NoError(t, err)

		_, err = svc.RedeemInvite(ctx, token, "second", "Str0ng!pass")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("expired invite cannot be redeemed", func(t *testing.T) {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		require.NoError(t, err)

		now := time.Now().UTC()
		require.NoError(t, st.Invites().CreateInvite(ctx, domain.Invite{
			ID:        idx.New().String(),
			Email:     "stale@example.com",
			TokenHash: cryptox.FingerprintToken(token),
			ExpiresAt: now.Add(-time.Minute),
			CreatedBy: "admin-1",
			CreatedAt: now.Add(-time.Hour),
		}))

		_, err = svc.RedeemInvite(ctx, token, "stale", "Str0ng!pass")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})

	t.Run("weak password is rejected before the invite is touched", func(t *testing.T) {
		_, token, err := svc.CreateInvite(ctx, "weak@example.com", time.Hour, "admin-1")
		require.NoError(t, err)

		_, err = svc.RedeemInvite(ctx, token, "weak", "password")
		require.ErrorIs(t, err, cryptox.ErrWeakPassword)

		// Still redeemable afterwards.
		_, err = svc.RedeemInvite(ctx, token, "weak", "Str0ng!pass")
		require.NoError(t, err)
	})

	t.Run("already-registered email rolls the invite back", func(t *testing.T) {
		seedUser(t, st, "taken@example.com", "Str0ng!pass", domain.RoleUser, true)

		_, token, err := svc.CreateInvite(ctx, "taken@example.com", time.Hour, "admin-1")
		require.NoError(t, err)

		_, err = svc.RedeemInvite(ctx, token, "taken", "Str0ng!pass")
		require.ErrorIs(t, err, ErrEmailAlreadyRegistered)

		// The consume ran inside the failed transaction, so the invite
		// must still read as active.
		invites, err := svc.ListInvites(ctx)
		require.NoError(t, err)
		for _, inv := range invites {
			if inv.Email == "taken@example.com" {
				require.Equal(t, domain.InviteStatusActive, inv.Status(time.Now()))
			}
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.RedeemInvite(ctx, "completely-made-up", "who", "Str0ng!pass")
		require.ErrorIs(t, err, ErrInviteNotFound)
	})
}

func TestRedeemInviteConcurrent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	_, token, err := svc.CreateInvite(ctx, "race@example.com", time.Hour, "admin-1")
	require.NoError(t, err)

	const redeemers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		lost      int
	)

	for i := 0; i < redeemers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.RedeemInvite(ctx, token, "racer", "Str0ng!pass")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			default:
				lost++
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, succeeded, "exactly one concurrent redeemer may win")
	require.Equal(t, redeemers-1, lost)

	users, err := st.Users().ListUsers(ctx, store.UserFilter{Query: "race@example.com"})
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestRevokeInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	t.Run("unused invites can be revoked", func(t *testing.T) {
		invite, _, err := svc.CreateInvite(ctx, "revoke@example.com", time.Hour, "admin-1")
		require.NoError(t, err)

		require.NoError(t, svc.RevokeInvite(ctx, invite.ID))

		_, err = st.Invites().GetInviteByID(ctx, invite.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("redeemed invites cannot be revoked", func(t *testing.T) {
		invite, token, err := svc.CreateInvite(ctx, "kept@example.com", time.Hour, "admin-1")
		require.NoError(t, err)

		_, err = svc.RedeemInvite(ctx, token, "kept", "Str0ng!pass")
		require.NoError(t, err)

		require.ErrorIs(t, svc.RevokeInvite(ctx, invite.ID), ErrInviteAlreadyUsed)
	})

	t.Run("unknown id", func(t *testing.T) {
		require.ErrorIs(t, svc.RevokeInvite(ctx, "missing"), ErrInviteNotFound)
	})
}
