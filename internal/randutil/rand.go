// Package randutil derives reproducible math/rand/v2 generators for casual
// shoes and simulations.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Stream returns the generator for the i-th independent run derived from a
// base seed. Simulation workers use one stream each.
func Stream(seed int64, i int) *rand.Rand {
	return New(int64(mix(uint64(seed) + uint64(i+1)*goldenRatio64)))
}

// FromTime seeds a generator from t. Casual shoes use this when no seed is
// configured.
func FromTime(t time.Time) *rand.Rand {
	return New(t.UnixNano())
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
