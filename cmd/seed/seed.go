package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/go-auth-lifecycle/internal/domain/repository"
	pginfra "github.com/oksasatya/go-auth-lifecycle/internal/infrastructure/postgres"
)

const sqlPromoteAdmin = `UPDATE users SET active = TRUE, admin = TRUE WHERE id = $1`

type admin struct {
	Username string
	Email    string
	Hash     string
}

// seedAdmin creates the admin account or resets its password, then makes
// sure it is active with the admin flag set. It returns the user id and
// whether the row was created.
func seedAdmin(ctx context.Context, db pginfra.DBTX, a admin) (string, bool, error) {
	users := pginfra.NewUserRepository(db)

	var (
		id      string
		created bool
	)
	u, err := users.FindByUsernameOrEmail(ctx, a.Username, a.Email, false)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		if id, err = users.Insert(ctx, a.Username, a.Email, a.Hash); err != nil {
			return "", false, err
		}
		created = true
	case err != nil:
		return "", false, err
	default:
		id = u.ID
		if _, err := users.UpdatePassword(ctx, id, a.Hash); err != nil {
			return "", false, err
		}
	}

	if _, err := db.Exec(ctx, sqlPromoteAdmin, id); err != nil {
		return "", false, fmt.Errorf("promote admin: %w", err)
	}
	return id, created, nil
}
