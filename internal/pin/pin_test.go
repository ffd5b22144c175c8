package pin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	g := NewRand(nil)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		assert.Len(t, code, Length)
		assert.Equal(t, "", strings.TrimLeft(code, "0123456789"), "code %q must be all digits", code)
		seen[code] = true
	}
	// 200 draws from a million-code space should essentially never all collide.
	assert.Greater(t, len(seen), 1)
}

func TestGenerateZeroPadded(t *testing.T) {
	// A zero reader always yields the smallest value in range.
	g := NewRand(zeroReader{})
	code, err := g.Generate()
	require.NoError(t, err)
	assert.Equal(t, "000000", code)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
