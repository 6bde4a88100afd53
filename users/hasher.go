package users

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for local registrations
const DefaultCost = 10

// PasswordHasher hashes passwords and checks them against stored hashes.
type PasswordHasher interface {
	// Hash produces a salted one-way hash of the password.
	Hash(password string) (string, error)

	// Verify returns (true, nil) on match, (false, nil) on mismatch and an error
	// only when the stored hash itself is unusable.
	Verify(password, hash string) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt at a fixed cost
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), err
}

func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// dummyHash is compared against when no account matches so that a lookup miss
// costs the same as a password mismatch.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storefront-dummy-password"), DefaultCost)

// DummyHash returns a valid bcrypt hash that matches no real password
func DummyHash() string {
	return string(dummyHash)
}
