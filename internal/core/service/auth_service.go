package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blockport/trade-finance-api/internal/core/domain"
	"github.com/blockport/trade-finance-api/internal/core/ports"
)

// AuditRecorder accepts audit events without blocking the request path.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}

type authService struct {
	repo   ports.UserRepository
	hasher *PasswordHasher
	tokens *TokenService
	guard  *AccountGuard
	audit  AuditRecorder
	log    zerolog.Logger
}

// NewAuthService wires the auth core: password hashing, token lifecycle,
// lockout policy, and the async audit trail.
func NewAuthService(
	repo ports.UserRepository,
	hasher *PasswordHasher,
	tokens *TokenService,
	guard *AccountGuard,
	audit AuditRecorder,
	log zerolog.Logger,
) ports.AuthService {
	return &authService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		guard:  guard,
		audit:  audit,
		log:    log,
	}
}

// Register creates a new active user. The supplied role is trusted as-is
// (validated against the enumeration only) and defaults to importer.
func (s *authService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	role := in.Role
	if role == "" {
		role = domain.RoleImporter
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuditEvent{
		Action:    domain.AuditRegister,
		UserID:    created.ID,
		Email:     created.Email,
		ClientIP:  in.ClientIP,
		Timestamp: now,
	})
	return created, nil
}

// Login runs the credential state machine: lookup, lock check, password
// verification, activity check, then token issuance. The persisted success
// update is the commit point; nothing is mutated before it on the happy path.
func (s *authService) Login(ctx context.Context, email, password, clientIP string) (domain.TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.TokenPair{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same verdict as a wrong password: no account-existence oracle.
			s.recordAudit(domain.AuditLoginFailure, "", email, clientIP)
			return domain.TokenPair{}, domain.ErrInvalidCredentials
		}
		return domain.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	now := time.Now().UTC()

	// An active lock short-circuits before any hashing work. Failures
	// while locked do not advance the counter.
	if s.guard.IsLocked(user, now) {
		s.recordAudit(domain.AuditLoginFailure, user.ID, email, clientIP)
		return domain.TokenPair{}, domain.ErrAccountLocked
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		attempts, recErr := s.repo.RecordFailedLogin(ctx, user.ID, s.guard.Threshold(), s.guard.LockDeadline(now))
		if recErr != nil {
			s.log.Error().Err(recErr).Str("user_id", user.ID).Msg("failed to persist login failure")
		} else if attempts >= s.guard.Threshold() {
			s.log.Warn().Str("user_id", user.ID).Int("attempts", attempts).Msg("account locked")
			s.recordAudit(domain.AuditLockout, user.ID, email, clientIP)
		}
		s.recordAudit(domain.AuditLoginFailure, user.ID, email, clientIP)
		return domain.TokenPair{}, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return domain.TokenPair{}, domain.ErrInactiveAccount
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	if err := s.repo.RecordSuccessfulLogin(ctx, user.ID, pair.RefreshToken, now); err != nil {
		return domain.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	s.recordAudit(domain.AuditLoginSuccess, user.ID, email, clientIP)
	return pair, nil
}

// Refresh exchanges a valid, still-current refresh token for a new pair.
// Rotation is mandatory: presenting a token that has already been rotated
// away fails, which is how reuse of a revoked token surfaces.
func (s *authService) Refresh(ctx context.Context, refreshToken, clientIP string) (domain.TokenPair, error) {
	userID, err := s.tokens.Verify(refreshToken, TokenRefresh)
	if err != nil {
		return domain.TokenPair{}, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.TokenPair{}, domain.ErrInvalidToken
		}
		return domain.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	if user.RefreshToken != refreshToken {
		s.log.Warn().Str("user_id", user.ID).Msg("rotated refresh token presented")
		return domain.TokenPair{}, domain.ErrInvalidToken
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	// Conditional swap on the old token value; a concurrent refresh that
	// already rotated wins and this one fails closed.
	if err := s.repo.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrUserNotFound) {
			return domain.TokenPair{}, domain.ErrInvalidToken
		}
		return domain.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	s.recordAudit(domain.AuditRefresh, user.ID, user.Email, clientIP)
	return pair, nil
}

// Logout revokes the caller's refresh token. It is idempotent: an invalid or
// already-logged-out token resolves to a no-op, never an error.
func (s *authService) Logout(ctx context.Context, accessToken, clientIP string) error {
	userID, err := s.tokens.Verify(accessToken, TokenAccess)
	if err != nil {
		return nil
	}

	if err := s.repo.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to clear refresh token on logout")
		return nil
	}

	s.recordAudit(domain.AuditLogout, userID, "", clientIP)
	return nil
}

// Authenticate resolves an access token to a live user. State is re-read
// from persistence on every call; nothing is cached across requests.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	userID, err := s.tokens.Verify(accessToken, TokenAccess)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}
	return user, nil
}

func (s *authService) issuePair(userID string) (domain.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return domain.NewTokenPair(access, refresh), nil
}

func (s *authService) recordAudit(action domain.AuditAction, userID, email, clientIP string) {
	s.audit.Record(domain.AuditEvent{
		Action:    action,
		UserID:    userID,
		Email:     email,
		ClientIP:  clientIP,
		Timestamp: time.Now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
