package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-auth-lifecycle/internal/domain/repository"
)

const uniqueViolation = "23505"

const (
	sqlSelectWithPassword = `
		SELECT id, username, email, password_hash, active, admin, attempts, last_attempt, last_login, created_at
		FROM users
		WHERE username = $1 OR email = $2
		LIMIT 1`
	sqlSelectNoPassword = `
		SELECT id, username, email, active, admin, created_at
		FROM users
		WHERE username = $1 OR email = $2
		LIMIT 1`
	sqlInsert = `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id`
	sqlActivate = `
		UPDATE users SET active = TRUE
		WHERE id = $1 AND active = FALSE`
	sqlLoginSuccess = `
		UPDATE users SET attempts = 0, last_attempt = NULL, last_login = $1
		WHERE id = (SELECT id FROM users WHERE username = $2 OR email = $2 LIMIT 1)`
	sqlLoginFailure = `
		UPDATE users SET attempts = attempts + 1, last_attempt = $1
		WHERE id = (SELECT id FROM users WHERE username = $2 OR email = $2 LIMIT 1)
		RETURNING attempts`
	sqlUpdatePassword = `
		UPDATE users SET password_hash = $1
		WHERE id = $2`
)

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db    DBTX
	trace *logrus.Logger
}

// Option customizes the repository.
type Option func(*UserRepository)

// WithTrace logs every statement at debug level.
func WithTrace(logger *logrus.Logger) Option {
	return func(r *UserRepository) { r.trace = logger }
}

func NewUserRepository(db DBTX, opts ...Option) *UserRepository {
	r := &UserRepository{db: db}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *UserRepository) traceQuery(op, sql string, args []any) {
	if r.trace == nil {
		return
	}
	r.trace.WithFields(logrus.Fields{"op": op, "sql": sql, "args": len(args)}).Debug("users query")
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string, withPassword bool) (*entity.User, error) {
	u := &entity.User{}
	var err error
	if withPassword {
		r.traceQuery("select", sqlSelectWithPassword, []any{username, email})
		var lastAttempt, lastLogin pgtype.Timestamptz
		err = r.db.QueryRow(ctx, sqlSelectWithPassword, username, email).Scan(
			&u.ID, &u.Username, &u.Email, &u.Password, &u.Active, &u.Admin,
			&u.Attempts, &lastAttempt, &lastLogin, &u.CreatedAt,
		)
		u.LastAttempt = timePtr(lastAttempt)
		u.LastLogin = timePtr(lastLogin)
	} else {
		r.traceQuery("select_no_password", sqlSelectNoPassword, []any{username, email})
		err = r.db.QueryRow(ctx, sqlSelectNoPassword, username, email).Scan(
			&u.ID, &u.Username, &u.Email, &u.Active, &u.Admin, &u.CreatedAt,
		)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("users: find: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Insert(ctx context.Context, username, email, passwordHash string) (string, error) {
	r.traceQuery("insert", sqlInsert, []any{username, email, passwordHash})
	var id string
	if err := r.db.QueryRow(ctx, sqlInsert, username, email, passwordHash).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", repository.ErrDuplicateUser
		}
		return "", fmt.Errorf("users: insert: %w", err)
	}
	return id, nil
}

func (r *UserRepository) Activate(ctx context.Context, userID string) (int64, error) {
	r.traceQuery("activate", sqlActivate, []any{userID})
	tag, err := r.db.Exec(ctx, sqlActivate, userID)
	if err != nil {
		return 0, fmt.Errorf("users: activate: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) RecordLoginSuccess(ctx context.Context, identifier string, at time.Time) error {
	r.traceQuery("login_success", sqlLoginSuccess, []any{at, identifier})
	if _, err := r.db.Exec(ctx, sqlLoginSuccess, at.UTC(), identifier); err != nil {
		return fmt.Errorf("users: login success: %w", err)
	}
	return nil
}

func (r *UserRepository) RecordLoginFailure(ctx context.Context, identifier string, at time.Time) (int, error) {
	r.traceQuery("login_failure", sqlLoginFailure, []any{at, identifier})
	var attempts int
	if err := r.db.QueryRow(ctx, sqlLoginFailure, at.UTC(), identifier).Scan(&attempts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrUserNotFound
		}
		return 0, fmt.Errorf("users: login failure: %w", err)
	}
	return attempts, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) (int64, error) {
	r.traceQuery("update_password", sqlUpdatePassword, []any{passwordHash, userID})
	tag, err := r.db.Exec(ctx, sqlUpdatePassword, passwordHash, userID)
	if err != nil {
		return 0, fmt.Errorf("users: update password: %w", err)
	}
	return tag.RowsAffected(), nil
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

var _ repository.UserRepository = (*UserRepository)(nil)
