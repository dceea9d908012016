package service

import (
	"time"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

const (
	defaultMaxAttempts     = 5
	defaultLockoutDuration = 30 * time.Minute
)

// AccountGuard holds the lockout policy: how many consecutive failures lock
// an account and for how long.
//
// The failure counter is reset only by a successful login, never by the
// lockout window lapsing. An account whose lock has expired therefore stays
// one failure away from re-locking until its next successful login.
type AccountGuard struct {
	maxAttempts int
	lockout     time.Duration
}

// NewAccountGuard builds a guard. Non-positive values fall back to the
// defaults (5 attempts, 30 minute lockout).
func NewAccountGuard(maxAttempts int, lockout time.Duration) *AccountGuard {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = defaultLockoutDuration
	}
	return &AccountGuard{maxAttempts: maxAttempts, lockout: lockout}
}

// IsLocked reports whether the user's lock timestamp is set and still in the
// future at now.
func (g *AccountGuard) IsLocked(user *domain.User, now time.Time) bool {
	return user.LockedUntil != nil && now.Before(*user.LockedUntil)
}

// Threshold is the failure count at which an account locks.
func (g *AccountGuard) Threshold() int {
	return g.maxAttempts
}

// LockDeadline is the timestamp a lock set at now expires.
func (g *AccountGuard) LockDeadline(now time.Time) time.Time {
	return now.Add(g.lockout)
}
