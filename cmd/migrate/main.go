// Migrate applies the embedded Postgres migrations: go run ./cmd/migrate -direction up
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/99minutos/reporting-system/internal/infrastructure/db/postgres"
	"github.com/99minutos/reporting-system/internal/pkg/config"
	"github.com/99minutos/reporting-system/pkg/logger"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.IsProduction(), Service: "reporting-migrate", Env: cfg.Env})

	if err := postgres.Migrate(cfg.Postgres.URL, *direction); err != nil {
		log.Error().Err(err).Str("direction", *direction).Msg("migration failed")
		os.Exit(1)
	}
	log.Info().Str("direction", *direction).Msg("migrations applied")
}
