package auth

import (
	"errors"
	"testing"
	"time"
)

func TestCheckIsExact(t *testing.T) {
	a, err := New("hunter2", time.Hour)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !a.Check("hunter2") {
		t.Fatalf("expected correct password accepted")
	}
	for _, bad := range []string{"", "hunter", "Hunter2", "hunter2 "} {
		if a.Check(bad) {
			t.Fatalf("expected %q rejected", bad)
		}
	}
}

func TestTokenRoundTripAndExpiry(t *testing.T) {
	a, err := New("hunter2", time.Hour)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return start }

	token, expires, err := a.IssueToken()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expires.Equal(start.Add(time.Hour)) {
		t.Fatalf("expected expiry %v, got %v", start.Add(time.Hour), expires)
	}
	if err := a.VerifyToken(token); err != nil {
		t.Fatalf("verify: %v", err)
	}

	a.now = func() time.Time { return start.Add(2 * time.Hour) }
	if err := a.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestTokenBoundToPassword(t *testing.T) {
	a, _ := New("hunter2", time.Hour)
	b, _ := New("other", time.Hour)

	token, _, err := a.IssueToken()
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := b.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected token from another password rejected, got %v", err)
	}
	for _, bad := range []string{"", "!!!", "c2hvcnQ"} {
		if err := a.VerifyToken(bad); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected %q rejected, got %v", bad, err)
		}
	}
}

func TestTokensAreUnique(t *testing.T) {
	a, _ := New("hunter2", time.Hour)
	t1, _, _ := a.IssueToken()
	t2, _, _ := a.IssueToken()
	if t1 == t2 {
		t.Fatalf("expected distinct tokens")
	}
}

func TestNewRejectsEmptyPassword(t *testing.T) {
	if _, err := New("", time.Hour); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
