package models

import "time"

// Session is the server-side record behind a session cookie.
// A record is Active until ExpiresAt; Invalidated records are deleted outright.
type Session struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the idle window has elapsed at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
