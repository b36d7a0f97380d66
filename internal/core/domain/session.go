package domain

import "time"

// DefaultSessionTTL is the absolute lifetime of a session and of the token bound to it.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Provenance records where a session was opened from. Both fields are optional.
type Provenance struct {
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Session is the server-side record binding an issued token to a user.
// The row, not the token, is the authority for revocation: deleting it
// revokes access even while the token itself is still unexpired.
type Session struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	Token      string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Provenance Provenance `json:"provenance"`
	CreatedAt  time.Time  `json:"created_at"`
}

// LiveAt reports whether the session is still valid at t. Expiry is absolute.
func (s *Session) LiveAt(t time.Time) bool {
	return s != nil && s.ExpiresAt.After(t)
}
