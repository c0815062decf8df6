package models

import "time"

// RefreshToken mirrors a row of the refresh_tokens table. Token is the opaque
// value handed out to clients; Expires marks the end of its validity window.
type RefreshToken struct {
	ID        string
	UserID    int64
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}

// Expired reports whether the token's validity window has passed at the given
// instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.Expires.Before(now)
}
