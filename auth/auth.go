// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrEmptyCredential   = errors.New("credential cannot be empty")
)

// dummyHash is compared against when the voter does not exist so that an
// unknown login costs the same as a wrong credential.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("quickly-elect-dummy"), bcrypt.MinCost)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewBallotID returns a random UUID for a committed ballot
func NewBallotID() string {
	return uuid.NewString()
}

// HashCredential hashes a voter credential with bcrypt.
// cost <= 0 uses bcrypt.DefaultCost.
func HashCredential(credential string, cost int) (string, error) {
	if credential == "" {
		return "", ErrEmptyCredential
	}
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hash), nil
}

// VerifyCredential checks a plaintext credential against a stored hash
func VerifyCredential(hash, credential string) error {
	if hash == "" || credential == "" {
		return ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)); err != nil {
		return ErrInvalidCredential
	}
	return nil
}

// BurnCredentialCheck performs a throwaway comparison for logins that
// matched no voter.
func BurnCredentialCheck(credential string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(credential))
}
