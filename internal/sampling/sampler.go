// Package sampling provides seeded random samplers for the popgen engine.
//
// A [Rand] owns its generator and is not safe for concurrent use; give each
// goroutine its own instance, typically seeded from a base seed plus the
// replicate index.
package sampling

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Rand draws binomial and multinomial counts from a PCG stream.
type Rand struct {
	src *rand.PCG
}

// New returns a sampler whose draws are fully determined by seed.
func New(seed uint64) *Rand {
	return &Rand{
		src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
}

// Binomial returns the number of successes in n trials with success
// probability p. Probabilities at or beyond the bounds are deterministic.
func (r *Rand) Binomial(n int, p float64) int {
	switch {
	case n <= 0 || p <= 0:
		return 0
	case p >= 1:
		return n
	}
	b := distuv.Binomial{N: float64(n), P: p, Src: r.src}
	k := int(b.Rand())
	if k > n {
		k = n
	}
	return k
}

// Multinomial distributes n trials over len(probs) categories with a chain
// of conditional binomial draws. The last category receives the remainder,
// so the counts always sum to n.
func (r *Rand) Multinomial(n int, probs []float64) []int {
	counts := make([]int, len(probs))
	if len(probs) == 0 {
		return counts
	}

	remaining := n
	mass := 1.0
	for i := 0; i < len(probs)-1 && remaining > 0; i++ {
		var p float64
		if mass > 0 {
			p = probs[i] / mass
		}
		if p > 1 {
			p = 1
		}
		c := r.Binomial(remaining, p)
		counts[i] = c
		remaining -= c
		mass -= probs[i]
	}
	counts[len(probs)-1] += remaining
	return counts
}
