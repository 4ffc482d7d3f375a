package service

import (
	"context"
	"testing"

	"github.com/jobfolio/auth/internal/auth/domain"
	"github.com/jobfolio/auth/internal/auth/store"
	"github.com/jobfolio/auth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}

	t.Run("defaults to the user role", func(t *testing.T) {
		u, err := svc.CreateUser(ctx, "henry", "Henry@Example.com", "Str0ng!pass", "")
		require.NoError(t, err)
		require.Equal(t, domain.RoleUser, u.Role)
		require.Equal(t, "henry@example.com", u.Email)
		require.True(t, u.Active)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "henry2", "henry@example.com", "Str0ng!pass", "")
		require.ErrorIs(t, err, ErrEmailAlreadyRegistered)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "weak", "weak@example.com", "short", "")
		require.ErrorIs(t, err, cryptox.ErrWeakPassword)
	})

	t.Run("made-up role", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "x", "x@example.com", "Str0ng!pass", "superuser")
		require.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}

	admin := seedUser(t, st, "boss@example.com", "Str0ng!pass", domain.RoleAdmin, true)
	user := seedUser(t, st, "worker@example.com", "Str0ng!pass", domain.RoleUser, true)

	t.Run("partial updates apply only set fields", func(t *testing.T) {
		name := "renamed"
		updated, err := svc.UpdateUser(ctx, admin.ID, user.ID, UserUpdate{Username: &name})
		require.NoError(t, err)
		require.Equal(t, "renamed", updated.Username)
		require.Equal(t, user.Email, updated.Email)
		require.Equal(t, domain.RoleUser, updated.Role)
	})

	t.Run("email conflicts surface as conflict", func(t *testing.T) {
		email := "boss@example.com"
		_, err := svc.UpdateUser(ctx, admin.ID, user.ID, UserUpdate{Email: &email})
		require.ErrorIs(t, err, ErrEmailAlreadyRegistered)
	})

	t.Run("promotion then demotion round-trips", func(t *testing.T) {
		role := domain.RoleAdmin
		updated, err := svc.UpdateUser(ctx, admin.ID, user.ID, UserUpdate{Role: &role})
		require.NoError(t, err)
		require.True(t, updated.IsAdmin())

		role = domain.RoleUser
		updated, err = svc.UpdateUser(ctx, admin.ID, user.ID, UserUpdate{Role: &role})
		require.NoError(t, err)
		require.False(t, updated.IsAdmin())
	})

	t.Run("unknown user", func(t *testing.T) {
		name := "x"
		_, err := svc.UpdateUser(ctx, admin.ID, "missing", UserUpdate{Username: &name})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestLastAdminProtection(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}

	only := seedUser(t, st, "solo@example.com", "Str0ng!pass", domain.RoleAdmin, true)

	t.Run("cannot demote the last active admin", func(t *testing.T) {
		role := domain.RoleUser
		_, err := svc.UpdateUser(ctx, "someone-else", only.ID, UserUpdate{Role: &role})
		require.ErrorIs(t, err, ErrLastAdmin)
	})

	t.Run("cannot deactivate the last active admin", func(t *testing.T) {
		inactive := false
		_, err := svc.UpdateUser(ctx, "someone-else", only.ID, UserUpdate{Active: &inactive})
		require.ErrorIs(t, err, ErrLastAdmin)
	})

	t.Run("cannot delete the last active admin", func(t *testing.T) {
		err := svc.DeleteUser(ctx, "someone-else", only.ID)
		require.ErrorIs(t, err, ErrLastAdmin)
	})

	t.Run("a second active admin lifts the guard", func(t *testing.T) {
		second := seedUser(t, st, "second@example.com", "Str0ng!pass", domain.RoleAdmin, true)

		role := domain.RoleUser
		_, err := svc.UpdateUser(ctx, second.ID, only.ID, UserUpdate{Role: &role})
		require.NoError(t, err)

		// Back to one admin; the guard re-engages for the survivor.
		err = svc.DeleteUser(ctx, "someone-else", second.ID)
		require.ErrorIs(t, err, ErrLastAdmin)
	})
}

func TestSelfActionDenied(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}

	seedUser(t, st, "other@example.com", "Str0ng!pass", domain.RoleAdmin, true)
	admin := seedUser(t, st, "me@example.com", "Str0ng!pass", domain.RoleAdmin, true)

	t.Run("cannot delete own account", func(t *testing.T) {
		require.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), ErrSelfAction)
	})

	t.Run("cannot demote self", func(t *testing.T) {
		role := domain.RoleUser
		_, err := svc.UpdateUser(ctx, admin.ID, admin.ID, UserUpdate{Role: &role})
		require.ErrorIs(t, err, ErrSelfAction)
	})

	t.Run("cannot deactivate self", func(t *testing.T) {
		inactive := false
		_, err := svc.UpdateUser(ctx, admin.ID, admin.ID, UserUpdate{Active: &inactive})
		require.ErrorIs(t, err, ErrSelfAction)
	})

	t.Run("renaming self is fine", func(t *testing.T) {
		name := "still-me"
		updated, err := svc.UpdateUser(ctx, admin.ID, admin.ID, UserUpdate{Username: &name})
		require.NoError(t, err)
		require.Equal(t, "still-me", updated.Username)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}

	admin := seedUser(t, st, "root@example.com", "Str0ng!pass", domain.RoleAdmin, true)
	user := seedUser(t, st, "bye@example.com", "Str0ng!pass", domain.RoleUser, true)

	require.NoError(t, svc.DeleteUser(ctx, admin.ID, user.ID))

	_, err := st.Users().GetUserByID(ctx, user.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, user.ID), ErrUserNotFound)
}
