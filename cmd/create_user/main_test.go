package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"task_manager/internal/repository/memory"
	"task_manager/internal/service"
)

func newAuth() *service.AuthService {
	return service.NewAuthService(memory.NewUserStore(), service.NewTokenService("cli-secret", time.Minute))
}

func TestEnsureUserCreatesThenReuses(t *testing.T) {
	auth := newAuth()
	ctx := context.Background()

	first, err := ensureUser(ctx, auth, "ops@example.com", "ops", "pw")
	if err != nil || first.AccessToken == "" {
		t.Fatalf("first run = %+v, %v", first, err)
	}
	again, err := ensureUser(ctx, auth, "ops@example.com", "ops", "pw")
	if err != nil || again.User.ID != first.User.ID {
		t.Fatalf("second run = %+v, %v; want same user", again, err)
	}
}

func TestEnsureUserReportsFailures(t *testing.T) {
	auth := newAuth()
	ctx := context.Background()
	if _, err := ensureUser(ctx, auth, "ops@example.com", "ops", "pw"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := ensureUser(ctx, auth, "other@example.com", "ops", "pw"); !errors.Is(err, service.ErrUsernameTaken) {
		t.Fatalf("username clash: err = %v; want ErrUsernameTaken", err)
	}
	if _, err := ensureUser(ctx, auth, "ops@example.com", "ops", "wrong"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("existing account, wrong password: err = %v", err)
	}
}
