package domain

import "time"

// Role is the closed set of actor roles on the platform.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleImporter  Role = "importer"
	RoleExporter  Role = "exporter"
	RoleLogistics Role = "logistics"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleImporter, RoleExporter, RoleLogistics:
		return true
	}
	return false
}

// User models an authenticated actor in the system.
//
// FailedLoginAttempts and LockedUntil are mutated only by the login flow.
// RefreshToken holds the single currently-valid refresh token; every
// login/refresh overwrites it, revoking the previous one.
type User struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	FullName            string     `json:"full_name,omitempty"`
	PasswordHash        string     `json:"-"`
	Role                Role       `json:"role"`
	IsActive            bool       `json:"is_active"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	RefreshToken        string     `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// NewTokenPair builds a bearer token pair.
func NewTokenPair(access, refresh string) TokenPair {
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}
