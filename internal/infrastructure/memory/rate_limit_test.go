package memory

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitStore_CountsWithinWindow(t *testing.T) {
	s := NewRateLimitStore()

	for want := int64(1); want <= 5; want++ {
		got, err := s.Hit(context.Background(), "k", time.Minute)
		if err != nil {
			t.Fatalf("hit failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}
}

func TestRateLimitStore_WindowReset(t *testing.T) {
	s := NewRateLimitStore()

	if _, err := s.Hit(context.Background(), "k", 30*time.Millisecond); err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if _, err := s.Hit(context.Background(), "k", 30*time.Millisecond); err != nil {
		t.Fatalf("hit failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	got, err := s.Hit(context.Background(), "k", 30*time.Millisecond)
	if err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected fresh window count 1, got %d", got)
	}
}

func TestRateLimitStore_IndependentKeys(t *testing.T) {
	s := NewRateLimitStore()

	if _, err := s.Hit(context.Background(), "a", time.Minute); err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	got, err := s.Hit(context.Background(), "b", time.Minute)
	if err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if got != 1 {
		t.Fatalf("keys share a counter: got %d", got)
	}
}
