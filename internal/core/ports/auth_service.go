package ports

import (
	"context"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

// RegisterInput carries the registration payload into the auth core. The
// role is trusted as supplied (validated against the enumeration only) and
// defaults to importer when empty.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     domain.Role
	ClientIP string
}

// AuthService orchestrates credential verification, token lifecycle,
// lockout, and identity resolution for protected routes.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password, clientIP string) (domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken, clientIP string) (domain.TokenPair, error)
	// Logout is idempotent: an unresolvable token is a no-op, not an error.
	Logout(ctx context.Context, accessToken, clientIP string) error
	// Authenticate verifies an access token and re-reads the user from
	// persistence; inactive or missing users are rejected.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}
