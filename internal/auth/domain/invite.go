package domain

import "time"

// Invite statuses derived from used_at/expires_at; never stored.
const (
	InviteStatusActive  = "active"
	InviteStatusUsed    = "used"
	InviteStatusExpired = "expired"
)

// Invite is a one-time administrator invitation. The opaque secret itself is
// never stored, only its SHA-256 fingerprint.
type Invite struct {
	ID        string
	Email     string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time // nil while redeemable
	UsedBy    string     // empty until redeemed
	CreatedBy string     // issuing admin id
	CreatedAt time.Time
}

// Status derives the invite lifecycle state at the given instant.
// A used invite stays "used" even after its expiry passes.
func (i Invite) Status(now time.Time) string {
	switch {
	case i.UsedAt != nil:
		return InviteStatusUsed
	case now.After(i.ExpiresAt):
		return InviteStatusExpired
	default:
		return InviteStatusActive
	}
}
