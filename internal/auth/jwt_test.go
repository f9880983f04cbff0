package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, exp *time.Time) string {
	t.Helper()
	claims := Claims{UserID: 3, Role: RoleCustomer}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	cases := []struct {
		name     string
		token    string
		expected bool
	}{
		{name: "empty", token: "", expected: false},
		{name: "opaque", token: "not-a-jwt", expected: false},
		{name: "no exp", token: signed(t, nil), expected: false},
		{name: "expired", token: signed(t, &past), expected: true},
		{name: "valid", token: signed(t, &future), expected: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TokenExpired(tc.token, now); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestParseBearerToken(t *testing.T) {
	if got := ParseBearerToken("Bearer abc"); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
	if got := ParseBearerToken("Basic abc"); got != "" {
		t.Fatalf("expected empty for non-bearer, got %q", got)
	}
}
