// Server runs the reporting HTTP API.
//
//	@title			Reporting System API
//	@version		1.0
//	@description	Daily reports behind cookie-based session authentication.
//	@BasePath		/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/reporting-system/internal/api"
	"github.com/99minutos/reporting-system/internal/bootstrap"
	"github.com/99minutos/reporting-system/internal/core/service"
	mongostore "github.com/99minutos/reporting-system/internal/infrastructure/db/mongo"
	"github.com/99minutos/reporting-system/internal/infrastructure/queue"
	"github.com/99minutos/reporting-system/internal/pkg/config"
	"github.com/99minutos/reporting-system/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "reporting-api",
		Env:     cfg.Env,
	})

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	mongoClient, mongoDB, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	if err := mongostore.EnsureIndexes(ctx, mongoDB); err != nil {
		return err
	}
	stores.Probes["mongo"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	// The dispatcher outlives the HTTP server so events from in-flight
	// requests are still recorded during shutdown.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	audit := queue.NewDispatcher(cfg.AuditWorkers,
		service.NewAuditService(mongostore.NewAuditRepository(mongoDB), log), log)
	audit.Start(auditCtx)
	defer func() {
		stopAudit()
		audit.Wait()
	}()

	auth := bootstrap.NewAuth(cfg, stores, audit, log)
	if err := bootstrap.SeedAdmin(ctx, cfg.Bootstrap, auth.Service, log); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	e := api.NewRouter(api.Dependencies{
		Auth:          auth.Service,
		Authenticator: auth.Authenticator,
		Reports:       service.NewReportService(mongostore.NewReportRepository(mongoDB), log),
		Cookies:       auth.Cookies,
		Probes:        stores.Probes,
		Logger:        log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if cfg.Session.SweepInterval > 0 {
		g.Go(func() error {
			sweepLoop(gctx, auth.Service, cfg.Session.SweepInterval, log)
			return nil
		})
	}

	return g.Wait()
}

// sweepLoop removes expired sessions on every tick until ctx is done. A
// failed sweep is logged and retried on the next tick.
func sweepLoop(ctx context.Context, auth *service.AuthService, every time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.SweepExpired(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("session sweep failed")
				continue
			}
			log.Debug().Int64("removed", n).Msg("session sweep")
		}
	}
}
