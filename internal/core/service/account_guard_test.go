package service

import (
	"testing"
	"time"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

func TestAccountGuard_IsLocked(t *testing.T) {
	g := NewAccountGuard(5, 30*time.Minute)
	now := time.Now().UTC()

	if g.IsLocked(&domain.User{}, now) {
		t.Fatalf("user without lock reported locked")
	}

	future := now.Add(10 * time.Minute)
	if !g.IsLocked(&domain.User{LockedUntil: &future}, now) {
		t.Fatalf("future lock not reported")
	}

	past := now.Add(-10 * time.Minute)
	if g.IsLocked(&domain.User{LockedUntil: &past}, now) {
		t.Fatalf("expired lock reported locked")
	}
}

func TestAccountGuard_Defaults(t *testing.T) {
	g := NewAccountGuard(0, 0)

	if g.Threshold() != 5 {
		t.Fatalf("expected default threshold 5, got %d", g.Threshold())
	}
	now := time.Now().UTC()
	if got := g.LockDeadline(now); !got.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("expected default 30m deadline, got %v", got)
	}
}
