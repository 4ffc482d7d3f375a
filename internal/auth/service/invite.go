package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jobfolio/auth/internal/auth/domain"
	"github.com/jobfolio/auth/internal/auth/store"
	"github.com/jobfolio/auth/pkg/cryptox"
	"github.com/jobfolio/auth/pkg/idx"
	"github.com/jobfolio/auth/pkg/slogx"
)

// DefaultInviteTTL applies when the creating admin does not pick an expiry.
const DefaultInviteTTL = 72 * time.Hour

var (
	ErrInvalidInviteRequest   = errors.New("invalid_invite_request")
	ErrInviteNotFound         = errors.New("invite_not_found")
	ErrInviteAlreadyUsed      = errors.New("invite_already_used")
	ErrEmailAlreadyRegistered = errors.New("email_already_registered")
)

// InviteService manages one-time admin invites: minting, redemption into a
// fresh admin account, revocation and listing.
type InviteService struct {
	Store store.Store
}

// CreateInvite mints a new single-use admin invite and returns the invite row
// together with the raw opaque token. Only the SHA-256 fingerprint is stored,
// so this is the one chance to hand the token out.
func (s *InviteService) CreateInvite(
	ctx context.Context,
	email string,
	ttl time.Duration,
	createdBy string,
) (domain.Invite, string, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Invite{}, "", ErrInvalidInviteRequest
	}
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return domain.Invite{}, "", err
	}

	invite := domain.Invite{
		ID:        idx.New().String(),
		Email:     email,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: now.Add(ttl),
		CreatedBy: createdBy,
		CreatedAt: now,
	}

	if err := s.Store.Invites().CreateInvite(ctx, invite); err != nil {
		log.Error("failed to create invite",
			slog.String("invite_id", invite.ID),
			slog.Any("error", err),
		)
		return domain.Invite{}, "", err
	}

	log.Info("admin invite created",
		slog.String("invite_id", invite.ID),
		slog.String("created_by", createdBy),
		slog.Time("expires_at", invite.ExpiresAt),
	)

	return invite, token, nil
}

// RedeemInvite consumes an invite token and creates the admin account in a
// single transaction. The conditional consume guarantees that when two
// redeemers race on the same token, exactly one account is created.
func (s *InviteService) RedeemInvite(
	ctx context.Context,
	inviteToken string,
	username string,
	password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	username = strings.TrimSpace(username)
	if inviteToken == "" || username == "" || password == "" {
		return domain.User{}, ErrInvalidInviteRequest
	}

	if err := cryptox.ValidatePasswordStrength(password); err != nil {
		return domain.User{}, err
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	fingerprint := cryptox.FingerprintToken(inviteToken)
	userID := idx.New().String()

	var newUser domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		invite, err := tx.Invites().ConsumeInvite(ctx, fingerprint, now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		newUser = domain.User{
			ID:           userID,
			Username:     username,
			Email:        invite.Email,
			PasswordHash: passwordHash,
			Role:         domain.RoleAdmin,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := tx.Users().CreateUser(ctx, newUser); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailAlreadyRegistered
			}
			return err
		}

		// The invite's used_by column references users(id), so the link is
		// written only once the user row exists.
		return tx.Invites().SetInviteRedeemer(ctx, invite.ID, userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInviteNotFound
		}
		return domain.User{}, err
	}

	log.Info("admin registered via invite",
		slog.String("user_id", newUser.ID),
		slog.String("username", newUser.Username),
	)

	return newUser, nil
}

// RevokeInvite deletes an unused invite. Redeemed invites are kept as an
// audit trail and cannot be revoked.
func (s *InviteService) RevokeInvite(ctx context.Context, id string) error {
	invite, err := s.Store.Invites().GetInviteByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	if invite.UsedAt != nil {
		return ErrInviteAlreadyUsed
	}

	if err := s.Store.Invites().DeleteInvite(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("admin invite revoked", slog.String("invite_id", id))
	return nil
}

// ListInvites returns every invite, newest first. Status is derived from the
// row, not stored.
func (s *InviteService) ListInvites(ctx context.Context) ([]domain.Invite, error) {
	return s.Store.Invites().ListInvites(ctx)
}
