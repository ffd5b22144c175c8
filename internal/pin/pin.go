package pin

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// Length is the number of decimal digits in a join code.
const Length = 6

var maxCode = big.NewInt(1_000_000)

// Generator produces 6-digit join codes. Uniqueness among concurrently
// active sessions is the caller's concern, not this package's.
type Generator interface {
	Generate() (string, error)
}

// Rand draws codes uniformly from a random source.
type Rand struct {
	src io.Reader
}

// NewRand creates a generator over src; a nil src falls back to crypto/rand.
func NewRand(src io.Reader) *Rand {
	if src == nil {
		src = rand.Reader
	}
	return &Rand{src: src}
}

// Generate returns a zero-padded code in "000000".."999999".
func (g *Rand) Generate() (string, error) {
	n, err := rand.Int(g.src, maxCode)
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
