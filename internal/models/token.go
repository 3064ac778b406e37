package models

import "time"

// RefreshToken is the long-lived opaque credential used to mint new access
// tokens. The row id doubles as the cookie value, so it is the lookup key.
// Rows are never deleted; revocation only flips the flag.
type RefreshToken struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Revoked   bool      `db:"revoked" json:"revoked"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Session is the 1:1 audit companion of a RefreshToken, capturing the
// issuance context. Its revoked flag must always equal the token's; the
// pair is only ever written inside one transaction.
type Session struct {
	RefreshTokenID string     `db:"refresh_token_id" json:"refresh_token_id"`
	ExpiresAt      time.Time  `db:"expires_at" json:"expires_at"`
	IPAddress      string     `db:"ip_address" json:"ip_address"`
	UserAgent      string     `db:"user_agent" json:"user_agent"`
	Revoked        bool       `db:"revoked" json:"revoked"`
	RevokedAt      *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
