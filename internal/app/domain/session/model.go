// Package session defines the server-side session record.
package session

import "time"

// Session is the server-side state behind one client cookie token. UserID
// is empty for anonymous sessions, which still carry flash messages and
// the return-to path recorded before login.
type Session struct {
	Token        string    `json:"token"`
	UserID       string    `json:"user_id"`
	ReturnTo     string    `json:"return_to"`
	FlashSuccess []string  `json:"flash_success"`
	FlashError   []string  `json:"flash_error"`
	CreatedAt    time.Time `json:"created_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// Anonymous reports whether the session has no authenticated identity.
func (s Session) Anonymous() bool { return s.UserID == "" }
