package source

import (
	"math/rand/v2"

	"github.com/kailas-cloud/hammersynth/internal/domain/sampling"
)

func capList[T any](rng *rand.Rand, candidates []T, limit int) []T {
	return sampling.Select(rng, candidates, limitOrAll(limit, len(candidates)))
}
