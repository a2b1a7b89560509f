package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	codec := New("test-secret", time.Minute)

	token, err := codec.Sign("u_abc123", "user@example.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if claims.Subject != "u_abc123" {
		t.Errorf("subject want u_abc123, got %q", claims.Subject)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("email want user@example.com, got %q", claims.Email)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("iat/exp missing")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Minute {
		t.Errorf("ttl want 1m, got %v", got)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := New("secret-a", time.Minute).Sign("u_abc123", "user@example.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := New("secret-b", time.Minute).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	token, err := New("test-secret", -time.Minute).Sign("u_abc123", "user@example.com")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := New("test-secret", -time.Minute).Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	codec := New("test-secret", time.Minute)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): want ErrInvalidToken, got %v", token, err)
		}
	}
}
