package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 30 * 24 * time.Hour

var (
	ErrMissingSecret = errors.New("jwt secret is not configured")
	ErrTokenExpired  = errors.New("token has expired")
	ErrInvalidToken  = errors.New("invalid token")
)

type Scope string

const (
	// ScopeSession grants normal access to protected routes.
	ScopeSession Scope = "session"
	// ScopeSetPassword only authorizes completing the password setup step.
	ScopeSetPassword Scope = "set_password"
)

type Claims struct {
	UserID string `json:"id"`
	Scope  Scope  `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// SessionClaims is the verified content of a session token.
type SessionClaims struct {
	UserID    string
	Scope     Scope
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
	now           func() time.Time
}

// NewJWTManager fails on an empty secret so a misconfigured process never
// starts.
func NewJWTManager(secretKey string, tokenDuration time.Duration) (*JWTManager, error) {
	if secretKey == "" {
		return nil, ErrMissingSecret
	}
	if tokenDuration == 0 {
		tokenDuration = DefaultSessionTTL
	}
	return &JWTManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
		now:           time.Now,
	}, nil
}

// WithClock replaces the time source. Tests use it to simulate expiry.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

func (m *JWTManager) IssueSessionToken(userID string) (string, time.Time, error) {
	return m.issue(userID, ScopeSession)
}

// IssueSetPasswordToken mints a token that only the set-password route accepts.
func (m *JWTManager) IssueSetPasswordToken(userID string) (string, time.Time, error) {
	return m.issue(userID, ScopeSetPassword)
}

func (m *JWTManager) issue(userID string, scope Scope) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.tokenDuration)

	claims := Claims{
		UserID: userID,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifySessionToken checks signature and expiry. Expired tokens yield
// ErrTokenExpired; anything else wrong yields ErrInvalidToken.
func (m *JWTManager) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	},
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	scope := claims.Scope
	if scope == "" {
		scope = ScopeSession
	}

	return &SessionClaims{
		UserID:    claims.UserID,
		Scope:     scope,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
