package helpers

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	m, err := NewJWTManager("super-secret")
	if err != nil {
		t.Fatalf("NewJWTManager error: %v", err)
	}

	tok, exp, err := m.Issue("user-123", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if time.Until(exp) <= 59*time.Minute {
		t.Fatalf("unexpected expiry %v", exp)
	}

	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", claims.UserID, "user-123")
	}
	if claims.Purpose != PurposeAccess {
		t.Fatalf("purpose mismatch: got %q", claims.Purpose)
	}
}

func TestVerify_TTLBoundary(t *testing.T) {
	t.Parallel()

	issuedAt := time.Unix(1700000000, 0)
	ttl := 24 * time.Hour

	m, _ := NewJWTManager("secret")
	tok, _, err := m.WithClock(fixedClock(issuedAt)).Issue("u1", ttl)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	m.WithClock(fixedClock(issuedAt.Add(ttl - time.Second)))
	if _, err := m.Verify(tok); err != nil {
		t.Fatalf("expected token to verify just before expiry, got %v", err)
	}

	m.WithClock(fixedClock(issuedAt.Add(ttl + time.Second)))
	if _, err := m.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired just after expiry, got %v", err)
	}
}

func TestVerify_TTLBoundary_SubSecondIssue(t *testing.T) {
	t.Parallel()

	issuedAt := time.Unix(1700000000, int64(900*time.Millisecond))
	ttl := time.Hour

	m, _ := NewJWTManager("secret")
	tok, exp, err := m.WithClock(fixedClock(issuedAt)).IssueReset("u1", ttl)
	if err != nil {
		t.Fatalf("IssueReset error: %v", err)
	}
	if !exp.Equal(time.Unix(1700000000, 0).Add(ttl)) {
		t.Fatalf("returned expiry %v is not whole-second", exp)
	}

	m.WithClock(fixedClock(exp.Add(-500 * time.Millisecond)))
	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("expected token to verify half a second before expiry, got %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(exp) {
		t.Fatalf("exp claim %v differs from returned expiry %v", claims.ExpiresAt.Time, exp)
	}

	m.WithClock(fixedClock(exp.Add(time.Second)))
	if _, err := m.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after expiry, got %v", err)
	}
}

func TestVerify_ForeignSecret(t *testing.T) {
	t.Parallel()

	issuer, _ := NewJWTManager("right-secret")
	verifier, _ := NewJWTManager("wrong-secret")

	tok, _, err := issuer.Issue("u2", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := verifier.Verify(tok)
	if !errors.Is(err, ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
	if claims != nil {
		t.Fatalf("expected no claims on failure, got %+v", claims)
	}
}

func TestVerify_ForeignSecretExpired(t *testing.T) {
	t.Parallel()

	issuer, _ := NewJWTManager("right-secret")
	verifier, _ := NewJWTManager("wrong-secret")

	tok, _, err := issuer.Issue("u2", -time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := verifier.Verify(tok); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	m, _ := NewJWTManager("k")
	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b"} {
		if _, err := m.Verify(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Verify(%q): expected ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := "k"
	m, _ := NewJWTManager(secret)

	claims := &Claims{
		UserID:  "u3",
		Purpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := m.Verify(tok); !errors.Is(err, ErrTokenInvalidSignature) {
		t.Fatalf("expected ErrTokenInvalidSignature, got %v", err)
	}
}

func TestVerify_MissingExpiry(t *testing.T) {
	t.Parallel()

	secret := "k"
	m, _ := NewJWTManager(secret)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u4", Purpose: PurposeAccess}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := m.Verify(tok); err == nil {
		t.Fatalf("expected error for token without exp")
	}
}

func TestIssueReset_Purpose(t *testing.T) {
	t.Parallel()

	m, _ := NewJWTManager("k")
	tok, _, err := m.IssueReset("u5", time.Hour)
	if err != nil {
		t.Fatalf("IssueReset error: %v", err)
	}
	claims, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Purpose != PurposeReset {
		t.Fatalf("purpose mismatch: got %q want %q", claims.Purpose, PurposeReset)
	}
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTManager(""); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}
