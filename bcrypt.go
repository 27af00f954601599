package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes passwords with bcrypt at the given cost
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a hasher, cost outside bcrypt bounds
// falls back to the package default
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = passwordHashCost()
	}
	return &BcryptHasher{Cost: cost}
}

var _ PasswordAuthenticator = (*BcryptHasher)(nil)

// HashPassword will generate a password hash. The salt is random
// so two calls with the same input produce different hashes.
func (b *BcryptHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	cost := b.Cost
	if cost == 0 {
		cost = passwordHashCost()
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", NewInternalError(err, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func (b *BcryptHasher) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return NewInternalError(err, "failed to compare password hash")
	}
	return nil
}

var defaultHasher = &BcryptHasher{}

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	return defaultHasher.HashPassword(password)
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	return defaultHasher.ComparePasswordAndHash(password, hash)
}

// VerifyPassword reports whether password matches hash. A mismatch is
// not an error, a corrupt hash is.
func VerifyPassword(password, hash string) (bool, error) {
	return verifyWith(defaultHasher, password, hash)
}

func verifyWith(hasher PasswordAuthenticator, password, hash string) (bool, error) {
	err := hasher.ComparePasswordAndHash(password, hash)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
