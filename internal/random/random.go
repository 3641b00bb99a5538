// Package random provides a deterministic, reseedable pseudo-random
// source. No other package in this module imports it: RAM and registers
// always start zeroed, and the emulation's timing and logic paths do not
// use it.
package random

import "math/rand/v2"

// Coords is the minimal "where are we in the emulated timeline" value used
// to reseed the generator, so that two fresh instances fed an identical
// coordinate stream produce an identical sequence of "random" values.
type Coords struct {
	Frame    int
	Scanline int
	Clock    int
}

// Source supplies the current coordinates to reseed from.
type Source interface {
	GetCoords() Coords
}

// Random wraps a reseedable PRNG.
type Random struct {
	src Source

	// ZeroSeed forces a fixed seed, used only by tests that need
	// reproducible "random" sequences across two independently
	// constructed instances.
	ZeroSeed bool

	rng *rand.Rand
}

// NewRandom creates a Random bound to src.
func NewRandom(src Source) *Random {
	return &Random{src: src}
}

func (r *Random) reseed() {
	var seed1, seed2 uint64
	if r.ZeroSeed {
		seed1, seed2 = 0, 0
	} else {
		c := r.src.GetCoords()
		seed1 = uint64(c.Frame)<<32 | uint64(uint32(c.Scanline))
		seed2 = uint64(c.Clock)
	}
	r.rng = rand.New(rand.NewPCG(seed1, seed2))
}

// Rewindable returns a pseudo-random value in [0,n) reseeded from the
// current coordinates, so that rewinding the emulation to an earlier frame
// and replaying it reproduces the same "random" choices.
func (r *Random) Rewindable(n int) int {
	r.reseed()
	if n <= 0 {
		return 0
	}
	return r.rng.IntN(n)
}

// NoRewind returns a pseudo-random value in [0,n) without reseeding,
// intended for one-off uses (e.g. filling work RAM at boot) where
// rewind-reproducibility does not matter.
func (r *Random) NoRewind(n int) int {
	if r.rng == nil {
		r.reseed()
	}
	if n <= 0 {
		return 0
	}
	return r.rng.IntN(n)
}
