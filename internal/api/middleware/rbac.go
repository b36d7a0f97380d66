package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/reporting-system/internal/api/metrics"
	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

// RequireRole enforces role-based access control. It must run after
// RequireAuthenticated: a request without an identity is unauthenticated
// (401), one whose role is not allowed is forbidden (403).
func RequireRole(allowed ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c.Request().Context())
			if !ok {
				metrics.GuardDenialsTotal.WithLabelValues("role").Inc()
				return domain.ErrUnauthenticated
			}
			if !id.HasRole(allowed...) {
				metrics.GuardDenialsTotal.WithLabelValues("role").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireRoleAuthenticated composes RequireAuthenticated and RequireRole.
func RequireRoleAuthenticated(authn ports.Authenticator, cookies *CookieTransport, allowed ...domain.Role) echo.MiddlewareFunc {
	authenticated := RequireAuthenticated(authn, cookies)
	role := RequireRole(allowed...)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return authenticated(role(next))
	}
}
