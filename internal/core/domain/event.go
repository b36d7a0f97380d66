package domain

import "time"

// AuthEventType names an entry in the authentication audit trail.
type AuthEventType string

const (
	EventLoginSucceeded  AuthEventType = "login_succeeded"
	EventLoginFailed     AuthEventType = "login_failed"
	EventLogout          AuthEventType = "logout"
	EventLogoutAll       AuthEventType = "logout_all"
	EventPasswordChanged AuthEventType = "password_changed"
	EventForcedSignOut   AuthEventType = "forced_sign_out"
	EventUserDeactivated AuthEventType = "user_deactivated"
)

// AuthEvent is one audit record. UserID is zero when the user is unknown
// (e.g. a failed login for a username that does not exist).
type AuthEvent struct {
	Type       AuthEventType
	UserID     int64
	Username   string
	ActorID    int64 // admin acting on another user; zero for self-service
	Provenance Provenance
	Sessions   int64 // sessions removed, for bulk revocations
	OccurredAt time.Time
}
