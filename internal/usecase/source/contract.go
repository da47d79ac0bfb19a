package source

import (
	"context"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
)

// Source yields items until it returns io.EOF.
type Source[T any] interface {
	Name() string
	Next(ctx context.Context) (T, error)
}

// GenomeSource yields accepted genomes.
type GenomeSource = Source[*genome.Genome]

// Recorder receives per-genome outcomes (see metrics.Outcome*).
type Recorder interface {
	Record(source, outcome string)
}

// Stepper advances a progress display by one planned item.
type Stepper interface {
	Increment()
}

// Options are shared by all sources.
type Options struct {
	// Limit caps the candidate pool before filtering. Zero or less means no cap.
	Limit    int
	Rand     *rand.Rand
	Logger   *zap.Logger
	Recorder Recorder
	// Progress steps once per planned item consumed, written or skipped.
	Progress Stepper
}

type nopRecorder struct{}

func (nopRecorder) Record(string, string) {}

type nopStepper struct{}

func (nopStepper) Increment() {}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Progress == nil {
		o.Progress = nopStepper{}
	}
	return o
}
