package match

import dommatch "github.com/kailas-cloud/hammersynth/internal/domain/match"

// Reference is a loaded representative-genome database.
type Reference interface {
	Closest(seed string) dommatch.Result
	Threshold() int
}
