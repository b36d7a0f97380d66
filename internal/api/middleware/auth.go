package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/reporting-system/internal/api/metrics"
	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller attached by RequireAuthenticated.
func IdentityFrom(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return id, ok && id != nil
}

// RequireAuthenticated resolves the auth cookie into an identity and stores
// it in the request context. On failure the wrapped handler never runs:
// security failures yield domain.ErrUnauthenticated, storage failures are
// passed through for the error handler to render.
func RequireAuthenticated(authn ports.Authenticator, cookies *CookieTransport) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, _ := cookies.Read(c)

			id, err := authn.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.AuthenticationsTotal.WithLabelValues("unauthenticated").Inc()
					metrics.GuardDenialsTotal.WithLabelValues("authenticated").Inc()
					return domain.ErrUnauthenticated
				}
				metrics.AuthenticationsTotal.WithLabelValues("error").Inc()
				return err
			}
			metrics.AuthenticationsTotal.WithLabelValues("ok").Inc()

			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}
