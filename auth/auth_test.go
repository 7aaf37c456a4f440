// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestNewBallotID(t *testing.T) {
	id := NewBallotID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewBallotID() = %q is not a UUID: %v", id, err)
	}
	if id == NewBallotID() {
		t.Error("NewBallotID() produced duplicate IDs")
	}
}

func TestHashAndVerifyCredential(t *testing.T) {
	hash, err := HashCredential("s3cret-pass", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashCredential() error = %v", err)
	}
	if hash == "s3cret-pass" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("HashCredential() returned unexpected hash %q", hash)
	}

	tests := []struct {
		name       string
		hash       string
		credential string
		wantErr    bool
	}{
		{"correct credential", hash, "s3cret-pass", false},
		{"wrong credential", hash, "s3cret-pas", true},
		{"empty credential", hash, "", true},
		{"empty hash", "", "s3cret-pass", true},
		{"garbage hash", "not-a-hash", "s3cret-pass", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyCredential(tt.hash, tt.credential)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCredential) {
					t.Errorf("VerifyCredential() error = %v, want ErrInvalidCredential", err)
				}
				return
			}
			if err != nil {
				t.Errorf("VerifyCredential() unexpected error = %v", err)
			}
		})
	}
}

func TestHashCredentialRejectsEmpty(t *testing.T) {
	if _, err := HashCredential("", bcrypt.MinCost); !errors.Is(err, ErrEmptyCredential) {
		t.Errorf("HashCredential(\"\") error = %v, want ErrEmptyCredential", err)
	}
}

func TestHashCredentialIsSalted(t *testing.T) {
	h1, _ := HashCredential("same", bcrypt.MinCost)
	h2, _ := HashCredential("same", bcrypt.MinCost)
	if h1 == h2 {
		t.Error("HashCredential() produced identical hashes for the same input")
	}
}
