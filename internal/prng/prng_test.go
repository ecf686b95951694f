package prng

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjacktrainer/internal/randutil"
)

func TestMulberry32Deterministic(t *testing.T) {
	t.Parallel()

	a := NewMulberry32(42)
	b := NewMulberry32(42)
	for range 1000 {
		x, y := a.Float64(), b.Float64()
		require.Equal(t, x, y)
		require.GreaterOrEqual(t, x, 0.0)
		require.Less(t, x, 1.0)
	}
}

func TestMulberry32SeedsDiffer(t *testing.T) {
	t.Parallel()

	a := NewMulberry32(1)
	b := NewMulberry32(2)
	same := 0
	for range 100 {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 5)
}

func TestMulberry32ZeroSeed(t *testing.T) {
	t.Parallel()

	m := NewMulberry32(0)
	first := m.Float64()
	assert.NotEqual(t, first, m.Float64())
}

func TestHash32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0},
		{"a", 97},
		{"ab", 97*31 + 98},
		{"client:system:0", 1626017676},
		{"client:system:1", 1626017675},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Hash32(tt.in), "Hash32(%q)", tt.in)
	}
}

func TestHash32Overflow(t *testing.T) {
	t.Parallel()

	// both fold to a negative int32 and come back as its absolute value
	assert.Equal(t, uint32(1206291356), Hash32("abcdefg"))
	assert.Equal(t, uint32(1829564128), Hash32("overflowing seed string"))
	// "\u00e9" is one UTF-16 unit, "\U0001F0A1" is a surrogate pair
	assert.Equal(t, uint32(0xe9), Hash32("\u00e9"))
	assert.Equal(t, uint32(0xD83C*31+0xDCA1), Hash32("\U0001F0A1"))
}

func TestSHA256Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		SHA256Hex("abc"))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), SHA256Hex(""))
}

func TestGenerateSeed(t *testing.T) {
	t.Parallel()

	re := regexp.MustCompile(`^[A-Za-z0-9]{16}$`)
	seen := make(map[string]bool)
	for range 50 {
		s := GenerateSeed()
		require.Regexp(t, re, s)
		seen[s] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestSeedGeneratorDeterministic(t *testing.T) {
	t.Parallel()

	a := NewSeedGenerator(randutil.New(7)).Generate()
	b := NewSeedGenerator(randutil.New(7)).Generate()
	assert.Equal(t, a, b)
	assert.Len(t, a, SeedLength)
}
