package ports

import (
	"context"
	"time"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

// UserRepository defines the user persistence the auth core reads from.
// Account management writes (Create, UpdatePassword, SetActive) live here too
// so admin flows can revoke sessions in the same service call.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetActive(ctx context.Context, id int64, active bool) error
	LastLoginRecorder
}

// LastLoginRecorder updates a user's last successful login time. Session
// backends that cannot touch the users table themselves call it on Create.
type LastLoginRecorder interface {
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}
