package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	at, err := NewAccessToken(secret, 42, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if at.Token == "" {
		t.Fatal("empty token")
	}
	if remaining := time.Until(at.Exp); remaining < 14*time.Minute || remaining > 16*time.Minute {
		t.Errorf("expiry %v not ~15m out", at.Exp)
	}

	tok, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("parse signed token: %v", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims not MapClaims")
	}
	if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
		t.Errorf("sub = %v, want 42", claims["sub"])
	}
}

func TestNewAccessTokenWrongSecretRejected(t *testing.T) {
	at, err := NewAccessToken("right-secret", 7, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	tok, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	if err == nil && tok.Valid {
		t.Error("token validated with the wrong secret")
	}
}

func TestNewRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(14)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Errorf("raw length = %d, want 96", len(rt.Raw))
	}
	if remaining := time.Until(rt.Exp); remaining < 13*24*time.Hour {
		t.Errorf("expiry %v sooner than 13 days out", rt.Exp)
	}

	other, err := NewRefreshToken(14)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if rt.Raw == other.Raw {
		t.Error("two refresh tokens are identical")
	}
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("some-token")
	h2 := HashRefreshRaw("some-token")
	if h1 != h2 {
		t.Error("hash not deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
	if h1 == HashRefreshRaw("other-token") {
		t.Error("distinct tokens hash equal")
	}
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4) // minimum cost keeps the test fast
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}
