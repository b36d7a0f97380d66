package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
	"github.com/99minutos/reporting-system/internal/core/security"
	"github.com/99minutos/reporting-system/internal/infrastructure/db/memory"
)

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[int64]*domain.User
	nextID  int64
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(user)
	c.ID = r.nextID
	r.nextID++
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = active
	return nil
}

func (r *stubUserRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	t := at
	u.LastLoginAt = &t
	return nil
}

// failingSessions wraps a store and fails selected calls.
type failingSessions struct {
	ports.SessionStore
	createErr error
	findErr   error
}

func (f *failingSessions) Create(ctx context.Context, s *domain.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.SessionStore.Create(ctx, s)
}

func (f *failingSessions) FindLive(ctx context.Context, token string) (*domain.Session, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.SessionStore.FindLive(ctx, token)
}

type captureSink struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (c *captureSink) Enqueue(e domain.AuthEvent) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func (c *captureSink) types() []domain.AuthEventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.AuthEventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

// harness wires the real hasher, codec and in-memory store around a stub user repo.
type harness struct {
	users    *stubUserRepo
	sessions *memory.SessionStore
	hasher   *security.Hasher
	tokens   *security.TokenCodec
	audit    *captureSink
	svc      *AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	users := newStubUserRepo()
	h := &harness{
		users:    users,
		sessions: memory.NewSessionStore(users),
		hasher:   security.NewHasher(bcrypt.MinCost),
		tokens:   security.NewTokenCodec(security.TokenConfig{Secret: "test-secret", TTL: time.Hour}),
		audit:    &captureSink{},
	}
	h.svc = h.newService(h.sessions)
	return h
}

func (h *harness) newService(sessions ports.SessionStore) *AuthService {
	return NewAuthService(AuthServiceOptions{
		Users:    h.users,
		Sessions: sessions,
		Hasher:   h.hasher,
		Tokens:   h.tokens,
		Audit:    h.audit,
		Logger:   zerolog.Nop(),
	})
}

func (h *harness) authenticator(recheck bool) *Authenticator {
	return NewAuthenticator(AuthenticatorOptions{
		Tokens:        h.tokens,
		Sessions:      h.sessions,
		Users:         h.users,
		RecheckActive: recheck,
		Logger:        zerolog.Nop(),
	})
}

func (h *harness) addUser(t *testing.T, username, password string, role domain.Role) *domain.User {
	t.Helper()
	u, err := h.svc.CreateUser(context.Background(), ports.CreateUserInput{Username: username, Password: password, Role: role})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}
