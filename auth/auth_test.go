// Copyright (c) 2026 Poll Mall Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"testing"
)

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()

	if id1 == "" {
		t.Fatal("NewID() returned empty string")
	}
	if len(id1) != 36 {
		t.Errorf("NewID() length = %d, want 36", len(id1))
	}
	if id1 == id2 {
		t.Error("NewID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"standard", "correct horse battery staple"},
		{"short", "pw"},
		{"unicode", "pässwörd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword() error = %v", err)
			}
			if hash == tt.password {
				t.Error("HashPassword() returned plaintext")
			}

			if err := CheckPassword(hash, tt.password); err != nil {
				t.Errorf("CheckPassword() with correct password = %v", err)
			}
			if err := CheckPassword(hash, tt.password+"x"); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("CheckPassword() with wrong password = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	const secret = "test-secret"

	token, err := GenerateToken("user-123", "alice", true, secret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "user-123")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if !claims.Staff {
		t.Error("Staff = false, want true")
	}
}

func TestParseToken_Invalid(t *testing.T) {
	const secret = "test-secret"
	token, _ := GenerateToken("user-123", "alice", false, secret)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", token, "other-secret"},
		{"garbage", "not.a.token", secret},
		{"empty", "", secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, tt.secret); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ParseToken() = %v, want ErrInvalidToken", err)
			}
		})
	}
}
