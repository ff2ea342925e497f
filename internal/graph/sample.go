package graph

import (
	"fmt"
	"math/rand/v2"
)

// MaxSampleAttempts caps the rejection loop of RandomLinkedPair.
const MaxSampleAttempts = 100_000

// RandomLinkedPair draws two distinct units uniformly at random until they
// share a component and the first does not list the second as a neighbor.
// A nil rng uses the global math/rand/v2 source, which is safe for
// concurrent use; a non-nil rng must not be shared between goroutines.
func (g *Graph) RandomLinkedPair(rng *rand.Rand) (Pair, error) {
	if g.degenerate != nil {
		return Pair{}, g.degenerate
	}
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	n := len(g.names)
	for attempt := 0; attempt < MaxSampleAttempts; attempt++ {
		a, b := intN(n), intN(n)
		if a == b || g.component[a] != g.component[b] || g.adjacent(a, b) {
			continue
		}
		return Pair{Start: g.names[a], End: g.names[b]}, nil
	}
	return Pair{}, fmt.Errorf("%s: %w", g.Type, ErrSamplingExhausted)
}
