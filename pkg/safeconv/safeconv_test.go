package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustUintToInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 42, MustUintToInt(42))
	assert.Equal(t, MaxInt, MustUintToInt(uint(MaxInt)))
	assert.PanicsWithValue(t, "safeconv: uint to int overflow", func() {
		MustUintToInt(uint(MaxInt) + 1)
	})
}

func TestMustIntToUint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint(7), MustIntToUint(7))
	assert.PanicsWithValue(t, "safeconv: negative int to uint conversion", func() {
		MustIntToUint(-1)
	})
}

func TestMustIntToUint32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(4), MustIntToUint32(4))
	assert.Equal(t, uint32(math.MaxUint32), MustIntToUint32(math.MaxUint32))
	assert.Panics(t, func() { MustIntToUint32(-1) })
	assert.Panics(t, func() { MustIntToUint32(math.MaxUint32 + 1) })
}
