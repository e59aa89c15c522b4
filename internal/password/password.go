// Package password wraps the one-way digest used for stored credentials.
package password

import "golang.org/x/crypto/bcrypt"

// Hasher produces and checks password digests.
type Hasher interface {
	Hash(plain string) ([]byte, error)
	Verify(plain string, digest []byte) bool
}

// Bcrypt implements Hasher using x/crypto bcrypt. The zero value uses the
// library default cost.
type Bcrypt struct {
	Cost int
}

// Hash derives a digest from the plaintext password.
func (b Bcrypt) Hash(plain string) ([]byte, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(plain), cost)
}

// Verify reports whether the plaintext matches the stored digest.
func (b Bcrypt) Verify(plain string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(plain)) == nil
}
