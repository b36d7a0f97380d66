package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/99minutos/reporting-system/internal/core/domain"
)

const (
	userColumns = `id, username, password_hash, role, active, last_login_at, created_at, updated_at`

	findUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	findUserByIDSQL       = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	insertUserSQL         = `
INSERT INTO users (username, password_hash, role, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns
	updatePasswordSQL = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	setActiveSQL      = `UPDATE users SET active = $2, updated_at = $3 WHERE id = $1`
	touchLastLoginSQL = `UPDATE users SET last_login_at = $2 WHERE id = $1`
)

// UserRepository implements ports.UserRepository on the users table.
type UserRepository struct {
	db      Querier
	timeout time.Duration
	now     func() time.Time
}

func NewUserRepository(db Querier, timeout time.Duration) *UserRepository {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &UserRepository{db: db, timeout: timeout, now: time.Now}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.findOne(ctx, "find user", findUserByUsernameSQL, username)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.findOne(ctx, "find user", findUserByIDSQL, id)
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	created, err := scanUser(r.db.QueryRow(ctx, insertUserSQL,
		user.Username,
		user.PasswordHash,
		string(user.Role),
		user.Active,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, storeError("insert user", err)
	}
	return created, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.updateOne(ctx, "update password", updatePasswordSQL, id, passwordHash, r.now().UTC())
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.updateOne(ctx, "set active", setActiveSQL, id, active, r.now().UTC())
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.updateOne(ctx, "touch last login", touchLastLoginSQL, id, at.UTC())
}

func (r *UserRepository) updateOne(ctx context.Context, op, query string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return storeError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.Active, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
