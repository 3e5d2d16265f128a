// Package rng provides the single process-wide PRNG source that
// kernel.Measure consumes (spec.md §5 "Shared mutable state"). It is
// seeded from OS entropy by default but substitutable with a
// deterministic source at Context-creation time, per spec.md's
// requirement that "Tests MUST be able to substitute a deterministic
// PRNG (dependency injection at context creation)".
package rng

import (
	"math/rand/v2"
	"sync"
)

// Source is the minimal PRNG surface kernel.Measure needs: a uniform
// float64 in [0, 1).
type Source interface {
	Float64() float64
}

// New returns a Source seeded from OS entropy, suitable for production
// use (rand/v2's default top-level functions already draw from a
// securely-seeded generator; wrapping it behind Source keeps kernel
// free of any direct dependency on math/rand).
func New() Source {
	return entropySource{}
}

type entropySource struct{}

func (entropySource) Float64() float64 { return rand.Float64() }

// NewDeterministic returns a Source with a fixed seed, for tests that
// need reproducible measurement outcomes (spec.md §8 scenario 2's
// frequency test, and Invariant 5's convergence property).
func NewDeterministic(seed uint64) Source {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

// lockedRand guards a *rand.Rand with a mutex so a single
// NewDeterministic source can be shared by concurrent tests without
// racing (math/rand/v2's top-level functions are already safe for
// concurrent use; *rand.Rand is not).
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
