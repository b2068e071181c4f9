// Package rng provides the random sources used by the lap simulation.
package rng

import (
	"math/rand/v2"
	"sync"
)

// Source yields values in [0,1).
type Source interface {
	Float64() float64
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

// New returns a non-deterministic source. Use this in production code.
func New() Source {
	//nolint:gosec // not used for security
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeeded returns a reproducible source. Two sources created with the same
// seed yield the same sequence.
func NewSeeded(seed uint64) Source {
	//nolint:gosec // not used for security
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewLocked wraps src for use by concurrent simulations.
func NewLocked(src Source) Source {
	return &lockedSource{src: src}
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// Between returns a value in [min,max).
func Between(src Source, minV, maxV float64) float64 {
	return minV + src.Float64()*(maxV-minV)
}

// Fixed always returns v. Mainly used in tests.
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }
