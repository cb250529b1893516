// Package rng produces unbiased bounded random integers.
package rng

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RangeMax is the largest value a Generator may return.
const RangeMax = math.MaxInt32

// Generator is the raw source of random values in [0, RangeMax].
// *rand.Rand satisfies it.
type Generator interface {
	Int31() int32
}

// Source draws uniform integers in bounded ranges from a Generator.
// A Source is not safe for concurrent use; give each goroutine its own.
type Source struct {
	gen Generator
}

// New returns a Source backed by math/rand seeded with seed.
func New(seed int64) *Source {
	return &Source{gen: rand.New(rand.NewSource(seed))}
}

// NewWithGenerator wraps an existing generator.
func NewWithGenerator(gen Generator) *Source {
	if gen == nil {
		panic("rng: nil generator")
	}
	return &Source{gen: gen}
}

// TimeSeed returns a seed derived from the current time.
func TimeSeed() int64 {
	return time.Now().UnixNano()
}

// UniformInt returns an integer uniformly distributed over [0, n).
//
// The generator range is split into n bins of equal width and draws that fall
// past the last full bin are rejected, so no value is favored by a modulo
// remainder. n must be in (0, RangeMax].
func (s *Source) UniformInt(n int) int {
	if n <= 0 || n > RangeMax {
		panic(fmt.Sprintf("rng: bound %d outside (0, %d]", n, RangeMax))
	}
	binWidth := RangeMax / n
	limit := n * binWidth
	for {
		r := int(s.gen.Int31())
		if r < limit {
			return r / binWidth
		}
	}
}

// RangeInt returns an integer uniformly distributed over [min, max].
func (s *Source) RangeInt(min, max int) int {
	if min > max {
		panic(fmt.Sprintf("rng: empty range [%d, %d]", min, max))
	}
	return min + s.UniformInt(max-min+1)
}
