package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

// The insert and the last-login update run as one statement so a session
// never exists without its login being recorded, and vice versa.
const (
	createSessionSQL = `
WITH inserted AS (
	INSERT INTO sessions (id, user_id, token, expires_at, ip_address, user_agent, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING user_id, created_at
)
UPDATE users SET last_login_at = inserted.created_at
FROM inserted
WHERE users.id = inserted.user_id`

	sessionColumns = `id, user_id, token, expires_at, ip_address, user_agent, created_at`

	findLiveSessionSQL   = `SELECT ` + sessionColumns + ` FROM sessions WHERE token = $1 AND expires_at > $2`
	listUserSessionsSQL  = `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = $1 AND expires_at > $2 ORDER BY created_at DESC`
	deleteSessionSQL     = `DELETE FROM sessions WHERE token = $1`
	deleteUserSessionSQL = `DELETE FROM sessions WHERE user_id = $1`
	sweepSessionsSQL     = `DELETE FROM sessions WHERE expires_at <= $1`
)

// SessionStore implements ports.SessionStore on the sessions table.
type SessionStore struct {
	db      Querier
	timeout time.Duration
	now     func() time.Time
}

// NewSessionStore returns a store bounded by timeout per statement.
func NewSessionStore(db Querier, timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &SessionStore{db: db, timeout: timeout, now: time.Now}
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.Exec(ctx, createSessionSQL,
		sess.ID,
		sess.UserID,
		sess.Token,
		sess.ExpiresAt.UTC(),
		nullable(sess.Provenance.IPAddress),
		nullable(sess.Provenance.UserAgent),
		sess.CreatedAt.UTC(),
	)
	if err != nil {
		return storeError("create session", err)
	}
	return nil
}

func (s *SessionStore) FindLive(ctx context.Context, token string) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sess, err := scanSession(s.db.QueryRow(ctx, findLiveSessionSQL, token, s.now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("find session", err)
	}
	return sess, nil
}

func (s *SessionStore) ListForUser(ctx context.Context, userID int64) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.Query(ctx, listUserSessionsSQL, userID, s.now().UTC())
	if err != nil {
		return nil, storeError("list sessions", err)
	}
	defer rows.Close()

	out := make([]*domain.Session, 0)
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, storeError("list sessions", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list sessions", err)
	}
	return out, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.Exec(ctx, deleteSessionSQL, token); err != nil {
		return storeError("delete session", err)
	}
	return nil
}

func (s *SessionStore) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tag, err := s.db.Exec(ctx, deleteUserSessionSQL, userID)
	if err != nil {
		return 0, storeError("delete user sessions", err)
	}
	return tag.RowsAffected(), nil
}

func (s *SessionStore) SweepExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tag, err := s.db.Exec(ctx, sweepSessionsSQL, s.now().UTC())
	if err != nil {
		return 0, storeError("sweep sessions", err)
	}
	return tag.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		sess   domain.Session
		ip, ua *string
	)
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.ExpiresAt, &ip, &ua, &sess.CreatedAt); err != nil {
		return nil, err
	}
	sess.Provenance = domain.Provenance{IPAddress: deref(ip), UserAgent: deref(ua)}
	return &sess, nil
}
