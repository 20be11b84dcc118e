package users_test

import (
	"errors"
	"testing"

	"github.com/shelflab/platform/internal/domain/users"
	memstore "github.com/shelflab/platform/internal/storage/memory"
)

func TestServiceRegisterAndAuthenticate(t *testing.T) {
	repo := memstore.NewUserRepository()
	svc := users.NewService(repo)

	user, err := svc.Register(users.RegisterInput{
		Email:    "test@example.com",
		Name:     "Test User",
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected ID to be set")
	}
	if user.PasswordHash == "" {
		t.Fatalf("expected password hash")
	}
	if user.PasswordHash == "supersecret" {
		t.Fatalf("password must not be stored in the clear")
	}

	authed, err := svc.Authenticate("test@example.com", "supersecret")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected same user ID")
	}

	if _, err := svc.Authenticate("test@example.com", "wrong"); !errors.Is(err, users.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestServiceRejectsDuplicateEmail(t *testing.T) {
	svc := users.NewService(memstore.NewUserRepository())

	input := users.RegisterInput{
		Email:    "dup@example.com",
		Name:     "First",
		Password: "supersecret",
	}
	if _, err := svc.Register(input); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	input.Name = "Second"
	if _, err := svc.Register(input); !errors.Is(err, users.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	upper := input
	upper.Email = "DUP@example.com"
	if _, err := svc.Register(upper); !errors.Is(err, users.ErrEmailExists) {
		t.Fatalf("expected case-insensitive duplicate detection, got %v", err)
	}
}
