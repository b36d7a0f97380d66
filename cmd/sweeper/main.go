// Sweeper deletes expired sessions once and exits. Schedule it from cron when
// the server's own sweep loop is disabled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/99minutos/reporting-system/internal/bootstrap"
	"github.com/99minutos/reporting-system/internal/pkg/config"
	"github.com/99minutos/reporting-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction(), Service: "reporting-sweeper", Env: cfg.Env})

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("open stores")
		os.Exit(1)
	}
	defer stores.Close()

	auth := bootstrap.NewAuth(cfg, stores, nil, log)
	n, err := auth.Service.SweepExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep failed")
		stores.Close()
		os.Exit(1)
	}
	log.Info().Int64("removed", n).Msg("expired sessions swept")
}
