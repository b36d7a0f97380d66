// Package memory holds in-process user and session backends for development
// and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

var errDuplicateToken = errors.New("session token already exists")

// SessionStore keeps sessions in a map guarded by a RWMutex. It loses every
// session on restart.
type SessionStore struct {
	mu       sync.RWMutex
	byToken  map[string]*domain.Session
	recorder ports.LastLoginRecorder
	now      func() time.Time
}

// NewSessionStore creates an empty store. recorder may be nil.
func NewSessionStore(recorder ports.LastLoginRecorder) *SessionStore {
	return &SessionStore{
		byToken:  make(map[string]*domain.Session),
		recorder: recorder,
		now:      time.Now,
	}
}

// SetClock replaces the time source used for expiry decisions.
func (s *SessionStore) SetClock(now func() time.Time) { s.now = now }

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	s.mu.Lock()
	if _, exists := s.byToken[sess.Token]; exists {
		s.mu.Unlock()
		return fmt.Errorf("create session: %w", errDuplicateToken)
	}
	s.byToken[sess.Token] = cloneSession(sess)
	s.mu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.TouchLastLogin(ctx, sess.UserID, sess.CreatedAt); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	}
	return nil
}

func (s *SessionStore) FindLive(_ context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.byToken[token]
	if !ok || !sess.LiveAt(s.now()) {
		return nil, nil
	}
	return cloneSession(sess), nil
}

func (s *SessionStore) ListForUser(_ context.Context, userID int64) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]*domain.Session, 0)
	for _, sess := range s.byToken {
		if sess.UserID == userID && sess.LiveAt(now) {
			out = append(out, cloneSession(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) DeleteAllForUser(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for token, sess := range s.byToken {
		if sess.UserID == userID {
			delete(s.byToken, token)
			n++
		}
	}
	return n, nil
}

func (s *SessionStore) SweepExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for token, sess := range s.byToken {
		if !sess.LiveAt(now) {
			delete(s.byToken, token)
			n++
		}
	}
	return n, nil
}

// Len reports how many rows, live or expired, the store holds.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}

func cloneSession(sess *domain.Session) *domain.Session {
	c := *sess
	return &c
}
