package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

// TokenType distinguishes the two token lifetimes in a pair.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

const (
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenService issues and verifies HS256-signed bearer tokens. Tokens are
// opaque to every other component; only this service parses them. The
// signing secret is process-wide and read-only after startup.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService builds a TokenService. Non-positive TTLs fall back to the
// defaults (30 minutes access, 7 days refresh).
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccessToken signs a short-lived access token for userID.
func (s *TokenService) IssueAccessToken(userID string) (string, error) {
	return s.sign(userID, TokenAccess, s.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for userID.
func (s *TokenService) IssueRefreshToken(userID string) (string, error) {
	return s.sign(userID, TokenRefresh, s.refreshTTL)
}

func (s *TokenService) sign(userID string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  userID,
		"type": string(typ),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify checks signature, algorithm, expiry, and token type, returning the
// subject user id. Expired, malformed, mis-signed, and wrong-type tokens all
// fail with the same domain.ErrInvalidToken so callers cannot tell them
// apart; the concrete reason stays internal.
func (s *TokenService) Verify(token string, want TokenType) (string, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}

	typ, _ := claims["type"].(string)
	if typ != string(want) {
		return "", domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}
