package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateAndVerify(t *testing.T) {
	token, err := GenerateToken("s3cret", "u1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	got, err := NewVerifier("s3cret").UserID(token)
	if err != nil || got != "u1" {
		t.Fatalf("UserID = %q, %v", got, err)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	wrongKey, _ := GenerateToken("other", "u1", time.Hour)
	expired, _ := GenerateToken("s3cret", "u1", -time.Minute)

	v := NewVerifier("s3cret")
	for name, token := range map[string]string{
		"wrong key": wrongKey,
		"expired":   expired,
		"garbage":   "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := v.UserID(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestVerifyWithoutSecretRejectsEverything(t *testing.T) {
	forged, _ := GenerateToken("attacker-chosen-secret", "victim", time.Hour)
	got, err := NewVerifier("").UserID(forged)
	if !errors.Is(err, ErrInvalidToken) || !errors.Is(err, ErrNoSecret) {
		t.Fatalf("UserID = %q, %v; want ErrInvalidToken wrapping ErrNoSecret", got, err)
	}
	if got != "" {
		t.Fatalf("user = %q, want empty", got)
	}
}

func TestInsecureVerifierDecodesOnly(t *testing.T) {
	token, _ := GenerateToken("anything", "u2", time.Hour)
	got, err := NewInsecureVerifier().UserID(token)
	if err != nil || got != "u2" {
		t.Fatalf("UserID = %q, %v", got, err)
	}

	expired, _ := GenerateToken("anything", "u2", -time.Minute)
	if _, err := NewInsecureVerifier().UserID(expired); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestFromRequest(t *testing.T) {
	v := NewVerifier("s3cret")
	token, _ := GenerateToken("s3cret", "u1", time.Hour)

	r := httptest.NewRequest("GET", "/api/tasks", nil)
	if _, err := v.FromRequest(r); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}

	r.Header.Set("Authorization", token)
	if _, err := v.FromRequest(r); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken for missing Bearer prefix", err)
	}

	r.Header.Set("Authorization", "Bearer "+token)
	if got, err := v.FromRequest(r); err != nil || got != "u1" {
		t.Fatalf("FromRequest = %q, %v", got, err)
	}
}

func TestUserContext(t *testing.T) {
	if got := UserFromContext(context.Background()); got != "" {
		t.Fatalf("empty context user = %q", got)
	}
	if got := UserFromContext(WithUser(context.Background(), "u1")); got != "u1" {
		t.Fatalf("user = %q", got)
	}
}
