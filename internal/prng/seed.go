package prng

import (
	"crypto/rand"
	"math/big"
)

const (
	seedAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	SeedLength   = 16
)

// RandSource allows deterministic seeds in tests
type RandSource interface {
	IntN(n int) int
}

// SeedGenerator produces fair-play seeds
type SeedGenerator struct {
	randSource RandSource
}

// NewSeedGenerator creates a generator. A nil source uses crypto/rand.
func NewSeedGenerator(randSource RandSource) *SeedGenerator {
	return &SeedGenerator{randSource: randSource}
}

// GenerateSeed returns a 16 character alphanumeric seed from crypto/rand
func GenerateSeed() string {
	return NewSeedGenerator(nil).Generate()
}

// Generate returns a SeedLength character alphanumeric seed
func (g *SeedGenerator) Generate() string {
	out := make([]byte, SeedLength)
	for i := range out {
		out[i] = seedAlphabet[g.intn(len(seedAlphabet))]
	}
	return string(out)
}

func (g *SeedGenerator) intn(n int) int {
	if g.randSource != nil {
		return g.randSource.IntN(n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("failed to generate random seed: " + err.Error())
	}
	return int(v.Int64())
}
