package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"task_manager/internal/db"
	"task_manager/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// openTestDB runs only if DATABASE_URL is set.
func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func createTestUser(t *testing.T, repo *UserRepository, prefix string) *domain.User {
	t.Helper()
	suffix := time.Now().UnixNano()
	u := &domain.User{
		Email:          fmt.Sprintf("%s-%d@example.com", prefix, suffix),
		Username:       fmt.Sprintf("%s_%d", prefix, suffix),
		HashedPassword: "digest",
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	pool := openTestDB(t)
	users := NewUserRepository(pool)
	ctx := context.Background()

	u := createTestUser(t, users, "dup")
	if !u.IsActive {
		t.Fatalf("new users should be active")
	}

	err := users.Create(ctx, &domain.User{Email: u.Email, Username: u.Username + "x", HashedPassword: "d"})
	var dup *DuplicateError
	if !errors.As(err, &dup) || dup.Constraint != ConstraintUsersEmail {
		t.Fatalf("err = %v; want duplicate on %s", err, ConstraintUsersEmail)
	}

	got, err := users.GetByUsername(ctx, u.Username)
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetByUsername = %v, %v", got, err)
	}
}

func TestTaskRepository_OrderingAndScoping(t *testing.T) {
	pool := openTestDB(t)
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)
	ctx := context.Background()

	owner := createTestUser(t, users, "owner")
	other := createTestUser(t, users, "other")

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []*domain.Task{
		{UserID: owner.ID, Title: "undated", Status: domain.TaskStatusPending},
		{UserID: owner.ID, Title: "march", Status: domain.TaskStatusPending, DueDate: &mar},
		{UserID: owner.ID, Title: "january", Status: domain.TaskStatusCompleted, DueDate: &jan},
	} {
		if err := tasks.Create(ctx, in); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	list, err := tasks.List(ctx, owner.ID, domain.TaskFilter{Limit: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Title != "january" || list[1].Title != "march" || list[2].Title != "undated" {
		t.Fatalf("unexpected order: %v", titles(list))
	}

	completed := domain.TaskStatusCompleted
	list, err = tasks.List(ctx, owner.ID, domain.TaskFilter{Status: &completed, Limit: 100})
	if err != nil || len(list) != 1 || list[0].Title != "january" {
		t.Fatalf("filtered list = %v, %v", titles(list), err)
	}

	target := list[0]
	if _, err := tasks.GetByID(ctx, other.ID, target.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign get err = %v; want ErrNotFound", err)
	}
	if _, err := tasks.Update(ctx, other.ID, target.ID, domain.TaskPatch{Title: domain.Some("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign update err = %v; want ErrNotFound", err)
	}

	updated, err := tasks.Update(ctx, owner.ID, target.ID, domain.TaskPatch{Status: domain.Some(domain.TaskStatusInProgress)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "january" || updated.DueDate == nil || !updated.DueDate.Equal(jan) {
		t.Fatalf("update changed unsupplied fields: %+v", updated)
	}

	deleted, err := tasks.Delete(ctx, owner.ID, target.ID)
	if err != nil || deleted.ID != target.ID {
		t.Fatalf("delete = %v, %v", deleted, err)
	}
	if _, err := tasks.GetByID(ctx, owner.ID, target.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v; want ErrNotFound", err)
	}
}

func titles(ts []*domain.Task) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Title)
	}
	return out
}
