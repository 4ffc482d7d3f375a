package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jobfolio/auth/internal/auth/domain"
)

const inviteColumns = `id, email, token_hash, expires_at, used_at, used_by, created_by, created_at`

type invitesRepo struct {
	db dbtx
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_invites (id, email, token_hash, expires_at, used_at, used_by, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.TokenHash, inv.ExpiresAt,
		mapOptionalTime(inv.UsedAt), mapStringNull(inv.UsedBy), inv.CreatedBy, inv.CreatedAt)
	return mapConflict(err)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.Invite, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM admin_invites WHERE id = ?`, id)
	return scanInvite(row)
}

// ConsumeInvite relies on a conditional UPDATE so that when two redeemers race
// on the same token, exactly one observes a row change and the other gets
// store.ErrNotFound. Only used_at is set here: used_by references users(id),
// so the redeemer row has to exist before SetInviteRedeemer links it.
func (r *invitesRepo) ConsumeInvite(ctx context.Context, tokenHash string, now time.Time) (domain.Invite, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admin_invites SET used_at = ?
		 WHERE token_hash = ? AND used_at IS NULL AND expires_at > ?`,
		now, tokenHash, now)
	if err != nil {
		return domain.Invite{}, err
	}
	if err := affectedOrNotFound(res); err != nil {
		return domain.Invite{}, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM admin_invites WHERE token_hash = ?`, tokenHash)
	return scanInvite(row)
}

func (r *invitesRepo) SetInviteRedeemer(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admin_invites SET used_by = ? WHERE id = ?`, userID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *invitesRepo) ListInvites(ctx context.Context) ([]domain.Invite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM admin_invites ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_invites WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *invitesRepo) DeleteExpiredInvites(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM admin_invites WHERE used_at IS NULL AND expires_at <= ?`, now)
	return err
}

func scanInvite(row rowScanner) (domain.Invite, error) {
	var (
		inv    domain.Invite
		usedAt sql.NullTime
		usedBy sql.NullString
	)
	err := row.Scan(&inv.ID, &inv.Email, &inv.TokenHash, &inv.ExpiresAt,
		&usedAt, &usedBy, &inv.CreatedBy, &inv.CreatedAt)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	inv.UsedAt = mapNullTimePtr(usedAt)
	inv.UsedBy = mapNullString(usedBy)
	return inv, nil
}
