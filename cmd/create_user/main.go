package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"task_manager/internal/config"
	"task_manager/internal/db"
	"task_manager/internal/logger"
	"task_manager/internal/repository"
	"task_manager/internal/service"
)

// create_user registers an account (or reuses one with the same email) and
// prints a bearer token for it.
func main() {
	email := flag.String("email", "tester@example.com", "account email")
	username := flag.String("username", "tester", "account username")
	password := flag.String("password", "", "account password (required)")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if cfg.InMemory() {
		logger.Fatal("create_user needs a postgres DATABASE_URL")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)

	res, err := ensureUser(ctx, service.NewAuthService(users, tokens), *email, *username, *password)
	if err != nil {
		logger.Fatal("create user failed", "error", err)
	}
	fmt.Printf("user_id=%d\ntoken=%s\n", res.User.ID, res.AccessToken)
}

// ensureUser signs the account up, reusing an existing one with the same
// email, and logs in. Any other signup failure is returned.
func ensureUser(ctx context.Context, auth *service.AuthService, email, username, password string) (*service.LoginResult, error) {
	u, err := auth.Signup(ctx, email, username, password)
	switch {
	case err == nil:
		logger.Info("user created", "id", u.ID, "username", u.Username)
	case errors.Is(err, service.ErrEmailTaken):
		logger.Info("user already exists", "email", email)
	default:
		return nil, fmt.Errorf("signup: %w", err)
	}

	res, err := auth.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return res, nil
}
