// Package rng provides the single PRNG stream shared by one realization
// (spec.md §5): every draw the micro, meso, and actor engines need, backed
// by gonum's statistical distributions.
package rng

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Stream is the PRNG collaborator every other package depends on through
// narrow, purpose-specific interfaces (geom.Source is one example).
type Stream struct {
	r    *rand.Rand
	norm distuv.Normal
}

// New creates a Stream seeded deterministically, so that a fixed seed
// reproduces a fixed sequence of draws across every collaborator that
// shares it (spec.md §8 invariant (iv)).
func New(seed uint64) *Stream {
	r := rand.New(rand.NewSource(int64(seed)))
	return &Stream{
		r:    r,
		norm: distuv.Normal{Mu: 0, Sigma: 1, Src: r},
	}
}

// Float64 draws uniform(0,1); satisfies geom.Source structurally.
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// Normal draws a single N(mean, sigma^2) sample.
func (s *Stream) Normal(mean, sigma float64) float64 {
	s.norm.Mu, s.norm.Sigma = mean, sigma
	return s.norm.Rand()
}

// Poisson draws a single Poisson(lambda) sample.
func (s *Stream) Poisson(lambda float64) float64 {
	p := distuv.Poisson{Lambda: lambda, Src: s.r}
	return p.Rand()
}

// Exponential draws the waiting time to the next event at rate
// a0 (spec.md §4.E's tau = -log(u)/a0), implemented directly against the
// uniform stream rather than distuv.Exponential so callers can reuse the
// exact -log(u) draw for NSM's direct-method tau recomputation.
func (s *Stream) Exponential(a0 float64) float64 {
	if a0 <= 0 {
		return math.Inf(1)
	}
	u := s.Float64()
	for u == 0 {
		u = s.Float64()
	}
	return -math.Log(u) / a0
}
