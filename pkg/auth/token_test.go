package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/grameenmart/storefront/pkg/config"
)

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "grameenmart",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()

	token, minted, err := MintAdminToken(cfg, now, AdminTokenPayload{Username: "gm-admin"})
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}
	if minted.ID == "" {
		t.Fatal("expected a generated jti")
	}

	claims, err := ParseAdminToken(cfg, token)
	if err != nil {
		t.Fatalf("parse admin token: %v", err)
	}
	if claims.Username != "gm-admin" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID != minted.ID {
		t.Fatalf("expected jti %s, got %s", minted.ID, claims.ID)
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.UTC())
	}
}

func TestParseAdminTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "grameenmart", ExpirationMinutes: 10}
	token, _, err := MintAdminToken(cfg, time.Now(), AdminTokenPayload{Username: "gm-admin"})
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}
	if _, err := ParseAdminToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAdminToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestParseAdminTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "grameenmart", ExpirationMinutes: 15}
	token, _, err := MintAdminToken(cfg, time.Now().Add(-time.Hour), AdminTokenPayload{Username: "gm-admin"})
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}
	_, err = ParseAdminToken(cfg, token)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiration error, got %v", err)
	}
}

func TestMintAdminTokenRequiresUsername(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "grameenmart", ExpirationMinutes: 5}
	if _, _, err := MintAdminToken(cfg, time.Now(), AdminTokenPayload{Username: " "}); err == nil {
		t.Fatal("expected username error")
	}
}
