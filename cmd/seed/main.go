package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-lifecycle/config"
	pginfra "github.com/oksasatya/go-auth-lifecycle/internal/infrastructure/postgres"
	"github.com/oksasatya/go-auth-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-auth-lifecycle/pkg/validation"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	username := getenv("SEED_USERNAME", "admin")
	email := getenv("SEED_EMAIL", "admin@localhost")
	password := os.Getenv("SEED_PASSWORD")
	if v := validation.ValidatePassword(password); !v.Valid {
		logger.Fatalf("SEED_PASSWORD: %s", v.Message)
	}

	hash, err := helpers.NewBcryptHasher(cfg.BcryptCost).Hash(password)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash password")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{DSN: cfg.PostgresDSN(), MaxConns: 1})
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	id, created, err := seedAdmin(ctx, pool, admin{Username: username, Email: email, Hash: hash})
	if err != nil {
		logger.WithError(err).Fatal("failed to seed admin")
	}
	logger.WithFields(logrus.Fields{
		"id":       id,
		"username": username,
		"email":    email,
		"created":  created,
	}).Info("admin account ready")
}
