// Package prng holds the deterministic generator and hashes shared by the
// shoe builder and the provably-fair commitments.
package prng

// Mulberry32 is a 32-bit generator with a single word of state. Equal seeds
// always produce equal sequences, which is what makes a fair shoe replayable.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 seeds a generator
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Float64 returns the next value in [0, 1)
func (m *Mulberry32) Float64() float64 {
	m.state += 0x6D2B79F5
	a := m.state
	t := (a ^ a>>15) * (1 | a)
	t = (t + (t^t>>7)*(61|t)) ^ t
	return float64(t^t>>14) / 4294967296
}

// Func adapts the generator to the func() float64 shape used by shuffles.
func (m *Mulberry32) Func() func() float64 {
	return m.Float64
}
