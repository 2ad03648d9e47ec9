package profilestore

import "golang.org/x/crypto/bcrypt"

func init() { bcryptCost = bcrypt.MinCost }

// CountHashCompares counts password hash comparisons until the returned
// restore func is called.
func CountHashCompares() (count func() int, restore func()) {
	n := 0
	prev := compareHash
	compareHash = func(hash, password []byte) error {
		n++
		return prev(hash, password)
	}
	return func() int { return n }, func() { compareHash = prev }
}
