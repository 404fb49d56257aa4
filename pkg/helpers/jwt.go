package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrEmptySecret           = errors.New("jwt secret must not be empty")
)

// TokenPurpose keeps reset tokens from being replayed as session tokens.
type TokenPurpose string

const (
	PurposeAccess TokenPurpose = "access"
	PurposeReset  TokenPurpose = "reset"
)

type Claims struct {
	UserID  string       `json:"userId"`
	Purpose TokenPurpose `json:"typ"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 tokens with a single process-wide secret.
type JWTManager struct {
	secret []byte
	now    func() time.Time
}

func NewJWTManager(secret string) (*JWTManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &JWTManager{secret: []byte(secret), now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	m.now = now
	return m
}

// Issue signs an access token for userID that expires after ttl.
func (m *JWTManager) Issue(userID string, ttl time.Duration) (string, time.Time, error) {
	return m.sign(userID, PurposeAccess, ttl)
}

// IssueReset signs a password reset token for userID.
func (m *JWTManager) IssueReset(userID string, ttl time.Duration) (string, time.Time, error) {
	return m.sign(userID, PurposeReset, ttl)
}

func (m *JWTManager) sign(userID string, purpose TokenPurpose, ttl time.Duration) (string, time.Time, error) {
	// NumericDate has second precision; truncate first so the returned
	// expiry matches the signed exp claim.
	now := m.now().Truncate(time.Second)
	exp := now.Add(ttl)
	claims := &Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Verify parses tokenStr and reports one of ErrTokenMalformed,
// ErrTokenInvalidSignature or ErrTokenExpired on failure.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, ErrTokenMalformed
	}
	if claims.UserID == "" || claims.Purpose == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
