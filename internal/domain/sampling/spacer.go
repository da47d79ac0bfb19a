package sampling

import "iter"

// SpacedIndices returns count indices spread evenly over [0, n): index i*n/count
// for i in [0, count). count is clamped to [0, n]. The result is strictly
// increasing and starts at 0 whenever count >= 1.
func SpacedIndices(n, count int) []int {
	count = min(max(count, 0), max(n, 0))
	out := make([]int, count)
	for i := range out {
		out[i] = i * n / count
	}
	return out
}

// Spaced yields count evenly spaced (index, item) pairs from list without
// modifying it. The sequence is finite and can be ranged over repeatedly.
func Spaced[T any](list []T, count int) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for _, idx := range SpacedIndices(len(list), count) {
			if !yield(idx, list[idx]) {
				return
			}
		}
	}
}
