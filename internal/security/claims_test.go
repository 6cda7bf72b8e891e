package security

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: subject}
	if !expiresAt.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestParseClaims_ReadsSubjectAndExpiry(t *testing.T) {
	exp := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	tok := signedToken(t, "42", exp)

	claims, err := ParseClaims(tok)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, exp)
	}
}

func TestParseClaims_NonNumericSubject(t *testing.T) {
	tok := signedToken(t, "not-a-number", time.Now().Add(time.Hour))

	claims, err := ParseClaims(tok)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims.UserID != 0 {
		t.Errorf("UserID = %d, want 0 for non-numeric subject", claims.UserID)
	}
}

func TestParseClaims_NoExpiry(t *testing.T) {
	tok := signedToken(t, "7", time.Time{})

	claims, err := ParseClaims(tok)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if !claims.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero", claims.ExpiresAt)
	}
	if claims.Expired(time.Now()) {
		t.Error("token without exp should never report expired")
	}
}

func TestParseClaims_MalformedToken(t *testing.T) {
	_, err := ParseClaims("not.a.jwt")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestClaims_Expired(t *testing.T) {
	now := time.Now().UTC()
	testCases := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future expiry", now.Add(time.Minute), false},
		{"past expiry", now.Add(-time.Minute), true},
		{"exactly now", now, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Claims{ExpiresAt: tc.expiresAt}
			if got := c.Expired(now); got != tc.want {
				t.Errorf("Expired = %v, want %v", got, tc.want)
			}
		})
	}
}
