package models

import "time"

// RefreshToken is the stored half of an opaque refresh token. Only the hash
// of the raw value is ever persisted.
type RefreshToken struct {
	TokenHash string
	UserID    string
	ClientID  string
	Scopes    []string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
