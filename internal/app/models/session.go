package models

import "time"

// Session is the server-side record behind a signed access token. The
// token's jti is the session id.
type Session struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	UserAgent string    `db:"user_agent"`
	IPAddress string    `db:"ip_address"`
	CreatedAt time.Time `db:"created_at"`
}

// ValidAt reports whether the session can authenticate a request at now
func (s *Session) ValidAt(now time.Time) bool {
	return !s.Revoked && s.ExpiresAt.After(now)
}
