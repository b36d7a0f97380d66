package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

const minPasswordLength = 8

// dummyPassword is hashed once at construction so a login for an unknown
// username spends the same bcrypt time as a login for a known one.
const dummyPassword = "reporting-system/timing-equaliser"

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users    ports.UserRepository
	Sessions ports.SessionStore
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Audit    ports.AuditSink // optional
	Logger   zerolog.Logger
}

// AuthService implements login, logout and session revocation flows.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionStore
	hasher    PasswordHasher
	tokens    TokenIssuer
	audit     ports.AuditSink
	log       zerolog.Logger
	dummyHash string
	now       func() time.Time
}

func NewAuthService(opts AuthServiceOptions) *AuthService {
	audit := opts.Audit
	if audit == nil {
		audit = nopAuditSink{}
	}
	dummy, err := opts.Hasher.Hash(dummyPassword)
	if err != nil {
		opts.Logger.Warn().Err(err).Msg("could not prepare dummy hash")
	}
	return &AuthService{
		users:     opts.Users,
		sessions:  opts.Sessions,
		hasher:    opts.Hasher,
		tokens:    opts.Tokens,
		audit:     audit,
		log:       opts.Logger,
		dummyHash: dummy,
		now:       time.Now,
	}
}

// Login verifies credentials, issues a token and persists its session. The
// token is only returned once the session row exists.
func (s *AuthService) Login(ctx context.Context, username, password string, prov domain.Provenance) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.Verify(password, s.dummyHash)
		s.loginFailed(username, 0, prov)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) || !user.Active {
		s.loginFailed(username, user.ID, prov)
		return nil, domain.ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Sign(domain.Claims{UserID: user.ID, Username: user.Username, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	sess := &domain.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Token:      token,
		ExpiresAt:  claims.ExpiresAt,
		Provenance: prov,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("session_id", sess.ID).Str("ip", prov.IPAddress).Msg("user logged in")
	s.audit.Enqueue(domain.AuthEvent{
		Type:       domain.EventLoginSucceeded,
		UserID:     user.ID,
		Username:   user.Username,
		Provenance: prov,
		OccurredAt: sess.CreatedAt,
	})

	return &ports.LoginResult{Token: token, User: user, Session: sess}, nil
}

func (s *AuthService) loginFailed(username string, userID int64, prov domain.Provenance) {
	s.log.Info().Str("username", username).Str("ip", prov.IPAddress).Msg("login rejected")
	s.audit.Enqueue(domain.AuthEvent{
		Type:       domain.EventLoginFailed,
		UserID:     userID,
		Username:   username,
		Provenance: prov,
		OccurredAt: s.now().UTC(),
	})
}

// Logout deletes the session bound to token. It is idempotent and accepts
// tokens that are already expired or revoked.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	if claims, err := s.tokens.Verify(token); err == nil {
		s.audit.Enqueue(domain.AuthEvent{
			Type:       domain.EventLogout,
			UserID:     claims.UserID,
			Username:   claims.Username,
			OccurredAt: s.now().UTC(),
		})
	}
	return nil
}

// LogoutAll signs the caller out of every device.
func (s *AuthService) LogoutAll(ctx context.Context, id *domain.Identity) (int64, error) {
	n, err := s.sessions.DeleteAllForUser(ctx, id.UserID)
	if err != nil {
		return 0, fmt.Errorf("logout all: %w", err)
	}
	s.log.Info().Int64("user_id", id.UserID).Int64("sessions", n).Msg("signed out everywhere")
	s.audit.Enqueue(domain.AuthEvent{
		Type:       domain.EventLogoutAll,
		UserID:     id.UserID,
		Username:   id.Username,
		Sessions:   n,
		OccurredAt: s.now().UTC(),
	})
	return n, nil
}

// Sessions lists the caller's live sessions.
func (s *AuthService) Sessions(ctx context.Context, id *domain.Identity) ([]*domain.Session, error) {
	list, err := s.sessions.ListForUser(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return list, nil
}

// ChangePassword replaces the caller's password and revokes all of their
// sessions, including the one making the request.
func (s *AuthService) ChangePassword(ctx context.Context, id *domain.Identity, current, next string) error {
	if len(next) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	user, err := s.users.FindByID(ctx, id.UserID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("change password: hash: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	n, err := s.sessions.DeleteAllForUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("change password: revoke sessions: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Int64("sessions", n).Msg("password changed")
	s.audit.Enqueue(domain.AuthEvent{
		Type:       domain.EventPasswordChanged,
		UserID:     user.ID,
		Username:   user.Username,
		Sessions:   n,
		OccurredAt: s.now().UTC(),
	})
	return nil
}

// CreateUser registers a new active account.
func (s *AuthService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

// DeactivateUser blocks future logins for userID and revokes the sessions it holds.
func (s *AuthService) DeactivateUser(ctx context.Context, actor *domain.Identity, userID int64) (int64, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("deactivate user: %w", err)
	}
	if err := s.users.SetActive(ctx, userID, false); err != nil {
		return 0, fmt.Errorf("deactivate user: %w", err)
	}
	n, err := s.sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("deactivate user: revoke sessions: %w", err)
	}

	s.log.Info().Int64("user_id", userID).Int64("actor_id", actor.UserID).Int64("sessions", n).Msg("user deactivated")
	s.audit.Enqueue(domain.AuthEvent{
		Type:       domain.EventUserDeactivated,
		UserID:     userID,
		Username:   user.Username,
		ActorID:    actor.UserID,
		Sessions:   n,
		OccurredAt: s.now().UTC(),
	})
	return n, nil
}

// ForceSignOut revokes every session of userID without touching the account.
func (s *AuthService) ForceSignOut(ctx context.Context, actor *domain.Identity, userID int64) (int64, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("force sign-out: %w", err)
	}
	n, err := s.sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("force sign-out: %w", err)
	}

	s.log.Info().Int64("user_id", userID).Int64("actor_id", actor.UserID).Int64("sessions", n).Msg("forced sign-out")
	s.audit.Enqueue(domain.AuthEvent{
		Type:       domain.EventForcedSignOut,
		UserID:     userID,
		Username:   user.Username,
		ActorID:    actor.UserID,
		Sessions:   n,
		OccurredAt: s.now().UTC(),
	})
	return n, nil
}

// SweepExpired deletes expired sessions. Scheduling is left to the caller.
func (s *AuthService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.SweepExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	s.log.Info().Int64("removed", n).Msg("expired sessions swept")
	return n, nil
}

type nopAuditSink struct{}

func (nopAuditSink) Enqueue(domain.AuthEvent) {}
