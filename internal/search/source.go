package search

import (
	"math/rand/v2"

	exprand "golang.org/x/exp/rand"
)

// randSource adapts a math/rand/v2 source to the source interface
// gonum's distuv distributions consume.
type randSource struct {
	src rand.Source
}

func (s randSource) Uint64() uint64 { return s.src.Uint64() }

// Seed is a no-op; build a new generator to reseed.
func (randSource) Seed(uint64) {}

// NewSource wraps a math/rand/v2 source for use as the Src field of a
// distuv distribution, so distribution draws come from the search's
// generator.
func NewSource(src rand.Source) exprand.Source {
	return randSource{src: src}
}
