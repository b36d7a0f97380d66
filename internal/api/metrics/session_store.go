package metrics

import (
	"context"
	"time"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

// InstrumentSessionStore wraps next so every call is observed in
// SessionStoreDuration.
func InstrumentSessionStore(next ports.SessionStore) ports.SessionStore {
	return &instrumentedStore{next: next}
}

type instrumentedStore struct {
	next ports.SessionStore
}

func observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	SessionStoreDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) Create(ctx context.Context, sess *domain.Session) (err error) {
	defer func(start time.Time) { observe("create", start, err) }(time.Now())
	return s.next.Create(ctx, sess)
}

func (s *instrumentedStore) FindLive(ctx context.Context, token string) (_ *domain.Session, err error) {
	defer func(start time.Time) { observe("find_live", start, err) }(time.Now())
	return s.next.FindLive(ctx, token)
}

func (s *instrumentedStore) ListForUser(ctx context.Context, userID int64) (_ []*domain.Session, err error) {
	defer func(start time.Time) { observe("list_for_user", start, err) }(time.Now())
	return s.next.ListForUser(ctx, userID)
}

func (s *instrumentedStore) Delete(ctx context.Context, token string) (err error) {
	defer func(start time.Time) { observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, token)
}

func (s *instrumentedStore) DeleteAllForUser(ctx context.Context, userID int64) (_ int64, err error) {
	defer func(start time.Time) { observe("delete_all_for_user", start, err) }(time.Now())
	return s.next.DeleteAllForUser(ctx, userID)
}

func (s *instrumentedStore) SweepExpired(ctx context.Context) (n int64, err error) {
	defer func(start time.Time) {
		observe("sweep_expired", start, err)
		if err == nil {
			SessionsSweptTotal.Add(float64(n))
		}
	}(time.Now())
	return s.next.SweepExpired(ctx)
}
