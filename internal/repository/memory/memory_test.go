package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

func TestTaskStoreOrdering(t *testing.T) {
	s := NewTaskStore()
	ctx := context.Background()

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, tk := range []*domain.Task{
		{UserID: 1, Title: "no-due-1"},
		{UserID: 1, Title: "march", DueDate: &mar},
		{UserID: 1, Title: "no-due-2"},
		{UserID: 1, Title: "january", DueDate: &jan},
		{UserID: 2, Title: "foreign", DueDate: &jan},
	} {
		if err := s.Create(ctx, tk); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := s.List(ctx, 1, domain.TaskFilter{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"january", "march", "no-due-2", "no-due-1"}
	if len(list) != len(want) {
		t.Fatalf("len = %d; want %d", len(list), len(want))
	}
	for i := range want {
		if list[i].Title != want[i] {
			t.Fatalf("position %d = %s; want %s", i, list[i].Title, want[i])
		}
	}
}

func TestTaskStoreReturnsCopies(t *testing.T) {
	s := NewTaskStore()
	ctx := context.Background()
	desc := "original"
	tk := &domain.Task{UserID: 1, Title: "x", Description: &desc}
	_ = s.Create(ctx, tk)

	got, _ := s.GetByID(ctx, 1, tk.ID)
	*got.Description = "mutated"

	again, _ := s.GetByID(ctx, 1, tk.ID)
	if *again.Description != "original" {
		t.Fatalf("store leaked internal state")
	}
}

func TestUserStoreDuplicates(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()
	_ = s.Create(ctx, &domain.User{Email: "a@x.com", Username: "a"})

	err := s.Create(ctx, &domain.User{Email: "b@x.com", Username: "a"})
	var dup *repository.DuplicateError
	if !errors.As(err, &dup) || dup.Constraint != repository.ConstraintUsersUsername {
		t.Fatalf("err = %v; want username duplicate", err)
	}
	if err := s.SetActive(99, false); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("SetActive unknown: err = %v", err)
	}
}
