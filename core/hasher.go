package core

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher computes and checks salted, adaptively-costed
// password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. A mismatch is a
	// normal false, never an error.
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt. The cost factor
// comes from configuration, never from the request.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify recomputes the hash and compares; bcrypt performs the
// comparison in constant time with respect to the candidate.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
