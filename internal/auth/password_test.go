package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		cost     int
		wantErr  error
	}{
		{name: "valid", password: "correct horse battery", cost: 4},
		{name: "too short", password: "short", cost: 4, wantErr: ErrPasswordTooShort},
		{name: "exactly minimum", password: "123456789012", cost: 4},
		{name: "multibyte counts runes", password: "ключключключ", cost: 4},
		{name: "too long", password: strings.Repeat("a", 73), cost: 4, wantErr: ErrPasswordTooLong},
		{name: "exactly maximum", password: strings.Repeat("a", 72), cost: 4},
		{name: "invalid cost falls back", password: "correct horse battery", cost: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, tt.cost)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("HashPassword() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && hash == "" {
				t.Error("expected a hash for a valid password")
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("reading-list-2024", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if err := CheckPassword("reading-list-2024", hash); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	for _, wrong := range []string{"reading-list-2025", ""} {
		if err := CheckPassword(wrong, hash); !errors.Is(err, ErrInvalidPassword) {
			t.Errorf("CheckPassword(%q) = %v, want ErrInvalidPassword", wrong, err)
		}
	}
}

func TestGenerateAPIToken(t *testing.T) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		t.Fatalf("GenerateAPIToken() error = %v", err)
	}
	if len(plaintext) != 64 || len(hash) != 64 {
		t.Errorf("unexpected lengths: token=%d hash=%d", len(plaintext), len(hash))
	}
	if HashToken(plaintext) != hash {
		t.Error("HashToken(plaintext) does not match returned hash")
	}

	other, _, err := GenerateAPIToken()
	if err != nil {
		t.Fatalf("second GenerateAPIToken() error = %v", err)
	}
	if plaintext == other {
		t.Error("tokens should be unique")
	}
}

func TestGenerateSessionSecret(t *testing.T) {
	secret, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("GenerateSessionSecret() error = %v", err)
	}
	if len(secret) != 64 {
		t.Errorf("secret length = %d, want 64", len(secret))
	}
}
