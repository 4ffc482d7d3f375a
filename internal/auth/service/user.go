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

var (
	ErrInvalidUserRequest = errors.New("invalid_user_request")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrLastAdmin          = errors.New("last_admin")
	ErrSelfAction         = errors.New("self_action_denied")
)

// UserService covers admin-side account management. Destructive operations
// carry two guardrails: an admin cannot act on their own account, and the
// last active administrator cannot be demoted, deactivated or deleted.
type UserService struct {
	Store store.Store
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
	Role     *string
	Active   *bool
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, f store.UserFilter) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx, f)
}

// CreateUser provisions an account directly, without an invite.
func (s *UserService) CreateUser(
	ctx context.Context,
	username, email, password, role string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidUserRequest
	}
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return domain.User{}, ErrInvalidRole
	}
	if err := cryptox.ValidatePasswordStrength(password); err != nil {
		return domain.User{}, err
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailAlreadyRegistered
		}
		return domain.User{}, err
	}

	log.Info("user created",
		slog.String("user_id", u.ID),
		slog.String("role", u.Role),
	)
	return u, nil
}

// UpdateUser applies a partial update. Role and active changes that would
// touch the acting admin, or strip the last active administrator, are
// rejected. The admin count is re-checked inside the same transaction as the
// mutation so concurrent demotions cannot both slip through.
func (s *UserService) UpdateUser(
	ctx context.Context,
	actorID, userID string,
	upd UserUpdate,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if upd.Role != nil && *upd.Role != domain.RoleUser && *upd.Role != domain.RoleAdmin {
		return domain.User{}, ErrInvalidRole
	}
	if upd.Password != nil {
		if err := cryptox.ValidatePasswordStrength(*upd.Password); err != nil {
			return domain.User{}, err
		}
	}

	demotes := upd.Role != nil && *upd.Role != domain.RoleAdmin
	deactivates := upd.Active != nil && !*upd.Active
	if actorID == userID && (demotes || deactivates) {
		return domain.User{}, ErrSelfAction
	}

	var out domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if u.IsAdmin() && u.Active && (demotes || deactivates) {
			count, err := tx.Users().CountActiveAdmins(ctx)
			if err != nil {
				return err
			}
			if count <= 1 {
				return ErrLastAdmin
			}
		}

		if upd.Username != nil {
			if err := tx.Users().UpdateUsername(ctx, userID, strings.TrimSpace(*upd.Username)); err != nil {
				return err
			}
		}
		if upd.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*upd.Email))
			if err := tx.Users().UpdateEmail(ctx, userID, email); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					return ErrEmailAlreadyRegistered
				}
				return err
			}
		}
		if upd.Password != nil {
			hash, err := cryptox.HashPassword(*upd.Password)
			if err != nil {
				return err
			}
			if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
				return err
			}
		}
		if upd.Role != nil {
			if err := tx.Users().UpdateRole(ctx, userID, *upd.Role); err != nil {
				return err
			}
		}
		if upd.Active != nil {
			if err := tx.Users().SetActive(ctx, userID, *upd.Active); err != nil {
				return err
			}
		}

		out, err = tx.Users().GetUserByID(ctx, userID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("user updated", slog.String("user_id", userID), slog.String("actor_id", actorID))
	return out, nil
}

// DeleteUser removes an account, subject to the same guardrails as updates.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return ErrSelfAction
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if u.IsAdmin() && u.Active {
			count, err := tx.Users().CountActiveAdmins(ctx)
			if err != nil {
				return err
			}
			if count <= 1 {
				return ErrLastAdmin
			}
		}

		return tx.Users().DeleteUser(ctx, userID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("user deleted",
		slog.String("user_id", userID),
		slog.String("actor_id", actorID),
	)
	return nil
}
