package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/blockport/trade-finance-api/internal/core/domain"
	"github.com/blockport/trade-finance-api/internal/core/ports"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) RecordFailedLogin(_ context.Context, id string, threshold int, lockUntil time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= threshold {
		until := lockUntil
		u.LockedUntil = &until
	}
	return u.FailedLoginAttempts, nil
}

func (r *stubUserRepo) RecordSuccessfulLogin(_ context.Context, id, refreshToken string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.RefreshToken = refreshToken
	last := at
	u.LastLoginAt = &last
	return nil
}

func (r *stubUserRepo) RotateRefreshToken(_ context.Context, id, oldToken, newToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.RefreshToken != oldToken {
		return domain.ErrInvalidToken
	}
	u.RefreshToken = newToken
	return nil
}

func (r *stubUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = ""
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id, fullName string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.FullName = fullName
	return cloneUser(u), nil
}

// get returns the stored user for direct state assertions and mutations.
func (r *stubUserRepo) get(t *testing.T, id string) *domain.User {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		t.Fatalf("user %s not in repo", id)
	}
	return u
}

type stubAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *stubAudit) Record(event domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func (a *stubAudit) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

func newTestAuthService(repo *stubUserRepo) (ports.AuthService, *stubAudit) {
	audit := &stubAudit{}
	svc := NewAuthService(
		repo,
		NewPasswordHasher(4), // min cost keeps the test fast
		NewTokenService("test-secret", time.Minute, time.Hour),
		NewAccountGuard(5, 30*time.Minute),
		audit,
		zerolog.Nop(),
	)
	return svc, audit
}

func register(t *testing.T, svc ports.AuthService, email, password string, role domain.Role) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return user
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, audit := newTestAuthService(repo)

	user := register(t, svc, "Alice@Example.com", "s3cretpass", "")

	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.Role != domain.RoleImporter {
		t.Fatalf("expected default role importer, got %s", user.Role)
	}
	if !user.IsActive {
		t.Fatalf("expected new user to be active")
	}
	if user.PasswordHash == "s3cretpass" || user.PasswordHash == "" {
		t.Fatalf("password not hashed: %q", user.PasswordHash)
	}
	if got := audit.actions(); len(got) != 1 || got[0] != domain.AuditRegister {
		t.Fatalf("expected register audit event, got %v", got)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	register(t, svc, "bob@example.com", "password1", domain.RoleExporter)
	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "BOB@example.com",
		Password: "password2",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "carol@example.com",
		Password: "password1",
		Role:     "superuser",
	})
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user := register(t, svc, "carol@example.com", "hunter2hunter2", domain.RoleImporter)

	pair, err := svc.Login(context.Background(), "carol@example.com", "hunter2hunter2", "10.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", pair)
	}
	if pair.TokenType != "bearer" {
		t.Fatalf("expected bearer token type, got %s", pair.TokenType)
	}

	stored := repo.get(t, user.ID)
	if stored.RefreshToken != pair.RefreshToken {
		t.Fatalf("refresh token not stored")
	}
	if stored.LastLoginAt == nil {
		t.Fatalf("last login not stamped")
	}
}

func TestAuthService_Login_NoExistenceOracle(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	register(t, svc, "dave@example.com", "correcthorse", domain.RoleImporter)

	_, errGhost := svc.Login(context.Background(), "ghost@example.com", "whatever", "")
	_, errWrong := svc.Login(context.Background(), "dave@example.com", "badpassword", "")

	if !errors.Is(errGhost, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errGhost)
	}
	if !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrong)
	}
	if errGhost.Error() != errWrong.Error() {
		t.Fatalf("error messages differ: %q vs %q", errGhost, errWrong)
	}
}

func TestAuthService_Login_LockoutAfterFiveFailures(t *testing.T) {
	repo := newStubUserRepo()
	svc, audit := newTestAuthService(repo)

	user := register(t, svc, "eve@example.com", "rightpassword", domain.RoleImporter)

	for i := 0; i < 5; i++ {
		if _, err := svc.Login(context.Background(), "eve@example.com", "wrongpassword", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	stored := repo.get(t, user.ID)
	if stored.FailedLoginAttempts != 5 {
		t.Fatalf("expected 5 failed attempts, got %d", stored.FailedLoginAttempts)
	}
	if stored.LockedUntil == nil || !stored.LockedUntil.After(time.Now()) {
		t.Fatalf("expected active lock, got %v", stored.LockedUntil)
	}

	// Correct password while locked still fails, with the distinct verdict.
	if _, err := svc.Login(context.Background(), "eve@example.com", "rightpassword", ""); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	// The locked attempt must not advance the counter.
	if got := repo.get(t, user.ID).FailedLoginAttempts; got != 5 {
		t.Fatalf("locked attempt advanced counter to %d", got)
	}

	found := false
	for _, a := range audit.actions() {
		if a == domain.AuditLockout {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected lockout audit event, got %v", audit.actions())
	}
}

func TestAuthService_Login_AfterLockExpiry(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user := register(t, svc, "frank@example.com", "rightpassword", domain.RoleImporter)

	for i := 0; i < 5; i++ {
		_, _ = svc.Login(context.Background(), "frank@example.com", "wrongpassword", "")
	}

	// Expire the lock.
	past := time.Now().UTC().Add(-time.Minute)
	repo.get(t, user.ID).LockedUntil = &past

	pair, err := svc.Login(context.Background(), "frank@example.com", "rightpassword", "")
	if err != nil {
		t.Fatalf("login after lock expiry failed: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatalf("expected token pair")
	}

	stored := repo.get(t, user.ID)
	if stored.FailedLoginAttempts != 0 {
		t.Fatalf("expected counter reset, got %d", stored.FailedLoginAttempts)
	}
	if stored.LockedUntil != nil {
		t.Fatalf("expected lock cleared, got %v", stored.LockedUntil)
	}
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user := register(t, svc, "gina@example.com", "rightpassword", domain.RoleImporter)
	repo.get(t, user.ID).IsActive = false

	if _, err := svc.Login(context.Background(), "gina@example.com", "rightpassword", ""); !errors.Is(err, domain.ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user := register(t, svc, "hana@example.com", "rightpassword", domain.RoleImporter)
	pair, err := svc.Login(context.Background(), "hana@example.com", "rightpassword", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	next, err := svc.Refresh(context.Background(), pair.RefreshToken, "")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}
	if repo.get(t, user.ID).RefreshToken != next.RefreshToken {
		t.Fatalf("rotated token not persisted")
	}

	// The new access token must resolve back to the same user.
	resolved, err := svc.Authenticate(context.Background(), next.AccessToken)
	if err != nil {
		t.Fatalf("authenticate after refresh failed: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, resolved.ID)
	}

	// Reusing the rotated-away token must fail.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken, ""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for reused token, got %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	register(t, svc, "ivan@example.com", "rightpassword", domain.RoleImporter)
	pair, err := svc.Login(context.Background(), "ivan@example.com", "rightpassword", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), pair.AccessToken, ""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for access token, got %v", err)
	}
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user := register(t, svc, "judy@example.com", "rightpassword", domain.RoleImporter)
	pair, err := svc.Login(context.Background(), "judy@example.com", "rightpassword", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), pair.AccessToken, ""); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if repo.get(t, user.ID).RefreshToken != "" {
		t.Fatalf("refresh token not cleared on logout")
	}

	// Second logout and garbage tokens are no-ops.
	if err := svc.Logout(context.Background(), pair.AccessToken, ""); err != nil {
		t.Fatalf("second logout errored: %v", err)
	}
	if err := svc.Logout(context.Background(), "not-a-token", ""); err != nil {
		t.Fatalf("logout with invalid token errored: %v", err)
	}

	// The revoked refresh token must no longer be exchangeable.
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken, ""); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestAuthService_Authenticate_InactiveUser(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user := register(t, svc, "kate@example.com", "rightpassword", domain.RoleImporter)
	pair, err := svc.Login(context.Background(), "kate@example.com", "rightpassword", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	repo.get(t, user.ID).IsActive = false

	if _, err := svc.Authenticate(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrInactiveAccount) {
		t.Fatalf("expected ErrInactiveAccount, got %v", err)
	}
}

func TestAuthService_Authenticate_GarbageToken(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	for _, token := range []string{"", "garbage", strings.Repeat("x", 512)} {
		if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
