package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/reporting-system/docs"
	"github.com/99minutos/reporting-system/internal/api/handler"
	"github.com/99minutos/reporting-system/internal/api/middleware"
	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

// Dependencies are the wired services the router exposes over HTTP.
type Dependencies struct {
	Auth          ports.AuthService
	Authenticator ports.Authenticator
	Reports       ports.ReportService
	Cookies       *middleware.CookieTransport
	Probes        map[string]handler.Probe
	Logger        zerolog.Logger
	// Registry receives the HTTP metrics; nil selects the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "reporting",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies)
	userHandler := handler.NewUserHandler(deps.Auth)
	reportHandler := handler.NewReportHandler(deps.Reports)
	authenticated := middleware.RequireAuthenticated(deps.Authenticator, deps.Cookies)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	self := e.Group("/auth", authenticated)
	self.POST("/logout-all", authHandler.LogoutAll)
	self.GET("/me", authHandler.Me)
	self.GET("/sessions", authHandler.Sessions)
	self.POST("/password", authHandler.ChangePassword)

	// --- Admin routes ---
	admin := e.Group("/admin", authenticated, middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/users", userHandler.Create)
	admin.POST("/users/:id/deactivate", userHandler.Deactivate)
	admin.POST("/users/:id/sign-out", userHandler.SignOut)
	admin.POST("/sessions/sweep", userHandler.SweepSessions)

	// --- Reports ---
	v1 := e.Group("/v1", authenticated)
	v1.POST("/reports", reportHandler.Create)
	v1.GET("/reports/mine", reportHandler.ListMine)
	v1.GET("/reports", reportHandler.ListAll, middleware.RequireRole(domain.RoleManager, domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)                      // liveness
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Probes).Readiness) // readiness

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil || v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
