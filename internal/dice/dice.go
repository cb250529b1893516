// Package dice rolls six-sided dice.
package dice

import (
	"slices"

	"github.com/verte-zerg/risk/internal/rng"
)

// Sides is the number of faces on a die.
const Sides = 6

// Roller rolls dice from a single random source.
type Roller struct {
	src *rng.Source
}

// NewRoller returns a Roller drawing from src.
func NewRoller(src *rng.Source) *Roller {
	return &Roller{src: src}
}

// NewSeeded returns a Roller with its own source seeded with seed.
func NewSeeded(seed int64) *Roller {
	return NewRoller(rng.New(seed))
}

// Die returns a single roll in [1, Sides].
func (r *Roller) Die() int {
	return r.src.RangeInt(1, Sides)
}

// Sorted fills dst with independent rolls in descending order.
func (r *Roller) Sorted(dst []int) {
	for i := range dst {
		dst[i] = r.Die()
	}
	slices.Sort(dst)
	slices.Reverse(dst)
}
