package ports

import (
	"context"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token   string
	User    *domain.User
	Session *domain.Session
}

// CreateUserInput carries the fields an admin supplies for a new account.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
}

type AuthService interface {
	Login(ctx context.Context, username, password string, prov domain.Provenance) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, id *domain.Identity) (int64, error)
	Sessions(ctx context.Context, id *domain.Identity) ([]*domain.Session, error)
	ChangePassword(ctx context.Context, id *domain.Identity, current, next string) error
	CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error)
	DeactivateUser(ctx context.Context, actor *domain.Identity, userID int64) (int64, error)
	ForceSignOut(ctx context.Context, actor *domain.Identity, userID int64) (int64, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// Authenticator resolves a raw token into a caller identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}
