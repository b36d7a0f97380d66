// Package bootstrap wires configuration into concrete stores and services.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/reporting-system/internal/api/handler"
	"github.com/99minutos/reporting-system/internal/api/metrics"
	"github.com/99minutos/reporting-system/internal/core/ports"
	"github.com/99minutos/reporting-system/internal/infrastructure/db/memory"
	"github.com/99minutos/reporting-system/internal/infrastructure/db/postgres"
	redisstore "github.com/99minutos/reporting-system/internal/infrastructure/db/redis"
	"github.com/99minutos/reporting-system/internal/pkg/config"
)

// Stores holds the user repository and session store selected by config,
// plus readiness probes for whatever connections were opened.
type Stores struct {
	Users    ports.UserRepository
	Sessions ports.SessionStore
	Probes   map[string]handler.Probe

	closers []func()
}

// Close releases every connection in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStores connects the configured backends. Users live in Postgres
// whenever DATABASE_URL is set and in memory otherwise; sessions follow
// SESSION_BACKEND. The session store is wrapped with latency metrics.
func OpenStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	s := &Stores{Probes: make(map[string]handler.Probe)}
	timeout := cfg.Session.StoreTimeout

	var pg postgres.Querier
	if cfg.Postgres.URL != "" {
		pool, err := postgres.Connect(ctx, postgres.Config{
			URL:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		s.Probes["postgres"] = pool.Ping
		pg = pool
		log.Info().Msg("postgres connected")
	}

	var users ports.UserRepository
	if pg != nil {
		users = postgres.NewUserRepository(pg, timeout)
	} else {
		log.Warn().Msg("DATABASE_URL not set, users are kept in memory")
		users = memory.NewUserRepository()
	}
	s.Users = users

	var sessions ports.SessionStore
	switch cfg.Session.Backend {
	case config.BackendPostgres:
		if pg == nil {
			s.Close()
			return nil, errors.New("postgres session backend requires DATABASE_URL")
		}
		sessions = postgres.NewSessionStore(pg, timeout)
	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.Probes["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		sessions = redisstore.NewSessionStore(client, users, timeout)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	case config.BackendMemory:
		sessions = memory.NewSessionStore(users)
	default:
		s.Close()
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	s.Sessions = metrics.InstrumentSessionStore(sessions)
	log.Info().Str("backend", cfg.Session.Backend).Msg("session store ready")
	return s, nil
}
