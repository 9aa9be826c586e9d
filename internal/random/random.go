// Package random builds the seedable random source threaded through story
// generation and provides the table sampling helpers built on top of it.
package random

import (
	"log/slog"
	"math/rand"
	"time"
)

// NewSeeded creates a seeded random number generator.
// If seed is 0, the current time is used and the chosen seed is logged so
// the run can be reproduced.
func NewSeeded(seed int64, logger *slog.Logger) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
		if logger != nil {
			logger.Info("using random seed", "seed", seed)
		}
	}
	return rand.New(rand.NewSource(seed))
}

// Choice returns a uniformly random element of items.
// It returns the zero value when items is empty.
func Choice[T any](rng *rand.Rand, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[rng.Intn(len(items))]
}

// Sample returns n distinct elements of items in random order.
// If n exceeds len(items), every element is returned.
func Sample[T any](rng *rand.Rand, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	out := make([]T, 0, n)
	for _, i := range rng.Perm(len(items))[:n] {
		out = append(out, items[i])
	}
	return out
}

// Between returns a uniformly random integer in [lo, hi].
func Between(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
