// Package security holds the password hashing primitive.
package security

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher produces salted bcrypt digests. The salt is fresh on every
// Hash call, so equal passwords never share a digest.
type BcryptHasher struct {
	cost  int
	dummy []byte
}

// NewBcryptHasher creates a hasher with the given cost. Costs outside
// bcrypt's range fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("liist-dummy-password"), cost)
	if err != nil {
		panic(err)
	}
	return &BcryptHasher{cost: cost, dummy: dummy}
}

// Hash returns the digest of plain.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plain matches digest. Malformed digests yield false.
func (h *BcryptHasher) Verify(digest, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// DummyDigest is a valid digest of a throwaway password, compared against
// when no account exists so that lookups of unknown emails cost the same.
func (h *BcryptHasher) DummyDigest() string {
	return string(h.dummy)
}
