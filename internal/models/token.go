package models

import "time"

// RefreshToken is a persisted refresh session. Tokens are single use and
// rotated on every refresh.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	UserAgent string     `db:"user_agent" json:"user_agent"`
	IPAddress string     `db:"ip_address" json:"ip_address"`
}

// Expired reports whether the token can no longer be exchanged at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.Revoked || now.After(t.ExpiresAt)
}
