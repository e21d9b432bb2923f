package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = 12

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher creates a hasher at the production bcrypt cost.
func NewHasher() *Hasher {
	return &Hasher{cost: defaultBcryptCost}
}

// NewHasherWithCost creates a hasher at a specific cost. Tests use a low cost
// to keep hashing fast.
func NewHasherWithCost(cost int) *Hasher {
	return &Hasher{cost: cost}
}

// Hash returns a salted one-way digest of the plaintext. A fresh salt is
// generated on every call, so two hashes of the same plaintext differ.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext matches the digest. A malformed digest
// is a mismatch, never an error.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
