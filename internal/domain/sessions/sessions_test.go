package sessions_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shelflab/platform/internal/domain/sessions"
)

func TestIssueAndValidate(t *testing.T) {
	svc := sessions.NewService(time.Hour)

	session, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected a token")
	}

	validated, err := svc.Validate(session.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if validated.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", validated.UserID)
	}

	if _, err := svc.Validate("no-such-token"); !errors.Is(err, sessions.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	svc := sessions.NewService(time.Hour)

	session, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	svc.Revoke(session.Token)
	if _, err := svc.Validate(session.Token); !errors.Is(err, sessions.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	svc := sessions.NewService(time.Millisecond)

	session, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := svc.Validate(session.Token); !errors.Is(err, sessions.ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	// Expired sessions are dropped; a second validate misses entirely.
	if _, err := svc.Validate(session.Token); !errors.Is(err, sessions.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry cleanup, got %v", err)
	}
}

func TestTokensAreUnique(t *testing.T) {
	svc := sessions.NewService(time.Hour)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := svc.Issue("user-1")
		if err != nil {
			t.Fatalf("issue failed: %v", err)
		}
		if seen[session.Token] {
			t.Fatalf("duplicate token issued")
		}
		seen[session.Token] = true
	}
}
