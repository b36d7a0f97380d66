package domain

import "errors"

var (
	// ErrInvalidCredentials covers wrong password, unknown user and inactive user alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated covers missing cookie, invalid token and revoked or expired session.
	ErrUnauthenticated = errors.New("unauthorized")
	// ErrForbidden is returned to an authenticated caller lacking the required role.
	ErrForbidden = errors.New("forbidden")

	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable marks a storage timeout or outage. It is retryable
	// and must never be reported to callers as unauthenticated.
	ErrStoreUnavailable = errors.New("store unavailable")

	ErrReportNotFound = errors.New("report not found")
)
