// Package rng provides the small deterministic random source used by world
// generation and the update scheduler. A Source is derived from a list of
// integers (seed, chunk coordinate, salt, tick) so the same inputs always
// yield the same sequence on every machine.
package rng

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Source is a 64-bit LCG. It is not safe for concurrent use.
type Source struct {
	state uint64
}

// New returns a Source seeded from the xxhash of parts.
func New(parts ...int64) *Source {
	buf := make([]byte, 8*len(parts))
	for i, p := range parts {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(p))
	}
	return &Source{state: xxhash.Sum64(buf)}
}

// Uint64 advances the generator and returns the new state.
func (s *Source) Uint64() uint64 {
	s.state = s.state*6364136223846793005 + 1442695040888963407
	return s.state
}

// Intn returns a value in [0, n). It returns 0 when n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int((s.Uint64() >> 33) % uint64(n))
}

// Float64 returns a value in [0, 1).
func (s *Source) Float64() float64 {
	return float64(s.Uint64()>>11) / (1 << 53)
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}
