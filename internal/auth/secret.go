// Package auth checks the shared secret that every heartbeat carries.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrNoSecret = errors.New("no shared secret configured")

// Verifier decides whether a presented password matches the shared secret.
type Verifier interface {
	Verify(password string) bool
}

// NewVerifier returns a bcrypt verifier when secretHash is set, otherwise a
// plaintext verifier for secret.
func NewVerifier(secret, secretHash string) (Verifier, error) {
	if secretHash != "" {
		if _, err := bcrypt.Cost([]byte(secretHash)); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
		return &HashVerifier{hash: []byte(secretHash)}, nil
	}
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &PlainVerifier{secret: []byte(secret)}, nil
}

// PlainVerifier compares against a plaintext secret in constant time.
type PlainVerifier struct {
	secret []byte
}

func (v *PlainVerifier) Verify(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), v.secret) == 1
}

// HashVerifier compares against a bcrypt hash of the secret.
type HashVerifier struct {
	hash []byte
}

func (v *HashVerifier) Verify(password string) bool {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
}
