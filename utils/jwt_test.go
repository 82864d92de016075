package utils

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := GenerateAccessToken(secret, "ana", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseAccessToken(tok, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "ana" {
		t.Fatalf("username = %q", claims.Username)
	}
}

func TestParseAccessTokenRejects(t *testing.T) {
	secret := []byte("test-secret")
	expired, _ := GenerateAccessToken(secret, "ana", -time.Minute)
	other, _ := GenerateAccessToken([]byte("other"), "ana", time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", other},
		{"garbage", "not-a-token"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAccessToken(tt.token, secret); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
