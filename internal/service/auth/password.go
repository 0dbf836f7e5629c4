package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by Compare when the password does not match.
var ErrPasswordMismatch = errors.New("password does not match")

// PasswordHasher produces one-way password hashes.
type PasswordHasher interface {
	// Hash returns a one-way hash of password suitable for storage.
	Hash(password string) (string, error)
}

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, ErrPasswordMismatch on mismatch, or another error
	// if the hash itself is unusable.
	Compare(hashedPassword, password string) error
}

// PasswordManager both hashes and verifies passwords.
type PasswordManager interface {
	PasswordHasher
	PasswordVerifier
}

// BcryptManager implements PasswordManager using bcrypt.
type BcryptManager struct {
	cost int
}

var _ PasswordManager = (*BcryptManager)(nil)

// NewBcryptManager creates a BcryptManager with the given cost.
// Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewBcryptManager(cost int) *BcryptManager {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptManager{cost: cost}
}

// Hash implements PasswordHasher.
func (m *BcryptManager) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare implements PasswordVerifier.
func (m *BcryptManager) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
