package ports

import (
	"context"
	"time"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

// UserRepository defines user persistence for the auth core.
//
// The mutating methods are contractually atomic: each one must be a single
// conditional read-modify-write at the store, never a plain read-then-write.
// Two concurrent logins for the same user must not corrupt the failure
// counter or both win a refresh-token rotation.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)

	// RecordFailedLogin atomically increments the failure counter and
	// returns the new count. When the incremented count reaches threshold
	// the lock timestamp is set to lockUntil in the same round trip.
	RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (int, error)

	// RecordSuccessfulLogin resets the failure counter, clears any lock,
	// stamps last login, and stores the new refresh token in one update.
	RecordSuccessfulLogin(ctx context.Context, id, refreshToken string, at time.Time) error

	// RotateRefreshToken swaps oldToken for newToken only if oldToken is
	// still the stored one; returns domain.ErrInvalidToken otherwise.
	// The conditional filter is what makes rotation race-safe.
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error

	ClearRefreshToken(ctx context.Context, id string) error

	UpdateProfile(ctx context.Context, id, fullName string) (*domain.User, error)
}
