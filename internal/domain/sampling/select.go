// Package sampling holds the selection strategies used to build balanced samples:
// a bounded uniform random selection and a deterministic evenly spaced pick.
package sampling

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// Select returns a uniformly shuffled copy of candidates truncated to
// min(len(candidates), limit). The input slice is not modified. A nil rng uses
// the global generator.
func Select[T any](rng *rand.Rand, candidates []T, limit int) []T {
	if limit <= 0 {
		return []T{}
	}
	buf := slices.Clone(candidates)
	swap := func(i, j int) { buf[i], buf[j] = buf[j], buf[i] }
	if rng != nil {
		rng.Shuffle(len(buf), swap)
	} else {
		rand.Shuffle(len(buf), swap)
	}
	if len(buf) > limit {
		buf = buf[:limit:limit]
	}
	return buf
}

// SelectSet is Select over a set. Keys are ordered before shuffling so that a
// seeded rng gives the same result on every run.
func SelectSet[T cmp.Ordered](rng *rand.Rand, set map[T]struct{}, limit int) []T {
	keys := make([]T, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return Select(rng, keys, limit)
}
