package bootstrap

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/99minutos/reporting-system/internal/api/middleware"
	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
	"github.com/99minutos/reporting-system/internal/core/security"
	"github.com/99minutos/reporting-system/internal/core/service"
	"github.com/99minutos/reporting-system/internal/pkg/config"
)

// Auth bundles the auth core built from one configuration.
type Auth struct {
	Service       *service.AuthService
	Authenticator *service.Authenticator
	Cookies       *middleware.CookieTransport
}

// NewAuth builds the hasher, token codec, cookie transport and auth services.
// audit may be nil.
func NewAuth(cfg *config.Config, stores *Stores, audit ports.AuditSink, log zerolog.Logger) *Auth {
	tokens := security.NewTokenCodec(security.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Session.TTL,
		Issuer: "reporting-system",
	})
	hasher := security.NewHasher(cfg.Auth.BcryptCost)

	return &Auth{
		Service: service.NewAuthService(service.AuthServiceOptions{
			Users:    stores.Users,
			Sessions: stores.Sessions,
			Hasher:   hasher,
			Tokens:   tokens,
			Audit:    audit,
			Logger:   log,
		}),
		Authenticator: service.NewAuthenticator(service.AuthenticatorOptions{
			Tokens:        tokens,
			Sessions:      stores.Sessions,
			Users:         stores.Users,
			RecheckActive: cfg.Auth.RecheckActive,
			Logger:        log,
		}),
		Cookies: middleware.NewCookieTransport(middleware.CookieConfig{
			Secure: cfg.Auth.CookieSecure,
			TTL:    cfg.Session.TTL,
		}),
	}
}

// SeedAdmin creates the bootstrap admin account when configured. An existing
// account with that username is left untouched.
func SeedAdmin(ctx context.Context, cfg config.BootstrapConfig, auth ports.AuthService, log zerolog.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	user, err := auth.CreateUser(ctx, ports.CreateUserInput{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Role:     domain.RoleAdmin,
	})
	switch {
	case errors.Is(err, domain.ErrUserExists):
		log.Debug().Str("username", cfg.AdminUsername).Msg("bootstrap admin already exists")
		return nil
	case err != nil:
		return err
	}
	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("bootstrap admin created")
	return nil
}
