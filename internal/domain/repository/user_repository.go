package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-auth-lifecycle/internal/domain/entity"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already registered")
)

// UserRepository is the credential store. Uniqueness of username and email
// is enforced by the store itself; callers may pre-check as a courtesy.
type UserRepository interface {
	// FindByUsernameOrEmail returns the first user whose username equals
	// username or whose email equals email. Identifier lookups pass the same
	// value twice. ErrUserNotFound when no row matches.
	FindByUsernameOrEmail(ctx context.Context, username, email string, withPassword bool) (*entity.User, error)
	// Insert creates an inactive user and returns its id.
	Insert(ctx context.Context, username, email, passwordHash string) (string, error)
	// Activate flips the active flag and returns the affected row count.
	// A second call for the same user affects 0 rows.
	Activate(ctx context.Context, userID string) (int64, error)
	RecordLoginSuccess(ctx context.Context, identifier string, at time.Time) error
	// RecordLoginFailure increments the attempt counter and returns its new value.
	RecordLoginFailure(ctx context.Context, identifier string, at time.Time) (int, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) (int64, error)
}
