package ports

import (
	"context"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

// SessionStore persists sessions. Each method is a single atomic operation
// against the backing store; errors are wrapped and never swallowed.
type SessionStore interface {
	// Create inserts the session and records the owner's last-login time.
	Create(ctx context.Context, s *domain.Session) error
	// FindLive returns the session for token only if it has not expired.
	// A missing or expired session yields (nil, nil).
	FindLive(ctx context.Context, token string) (*domain.Session, error)
	// ListForUser returns the user's sessions that are still live.
	ListForUser(ctx context.Context, userID int64) ([]*domain.Session, error)
	// Delete removes one session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
	// DeleteAllForUser removes every session of the user and reports how many went.
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
	// SweepExpired removes all sessions whose expiry has passed.
	SweepExpired(ctx context.Context) (int64, error)
}
