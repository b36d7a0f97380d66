package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/infrastructure/db/memory"
)

func TestInstrumentSessionStore_CountsSweeps(t *testing.T) {
	inner := memory.NewSessionStore(nil)
	store := InstrumentSessionStore(inner)
	ctx := context.Background()

	if err := store.Create(ctx, &domain.Session{ID: "s", UserID: 1, Token: "t"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	before := testutil.ToFloat64(SessionsSweptTotal)
	n, err := store.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("zero-expiry session should be swept, got %d", n)
	}
	if got := testutil.ToFloat64(SessionsSweptTotal) - before; got != 1 {
		t.Fatalf("expected swept counter +1, got %v", got)
	}
	if testutil.CollectAndCount(SessionStoreDuration) == 0 {
		t.Fatalf("expected store duration observations")
	}
}
