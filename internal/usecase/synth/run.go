// Package synth drives genome sources through the matcher into a sample file.
package synth

import (
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/metrics"
)

// Run is the state of one command invocation.
type Run struct {
	ID     string
	Logger *zap.Logger
	Rand   *rand.Rand
	Stats  *Stats
}

// NewRun creates a run context. A zero seed draws a random one.
func NewRun(logger *zap.Logger, seed uint64) *Run {
	if seed == 0 {
		seed = rand.Uint64()
	}
	id := uuid.NewString()
	logger = logger.With(zap.String("run_id", id))
	logger.Debug("Run started", zap.Uint64("seed", seed))
	return &Run{
		ID:     id,
		Logger: logger,
		Rand:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Stats:  NewStats(),
	}
}

// Stats counts per-genome outcomes by source. It implements source.Recorder.
type Stats struct {
	counts map[string]map[string]int
}

// NewStats creates an empty counter set.
func NewStats() *Stats {
	return &Stats{counts: make(map[string]map[string]int)}
}

// Record counts one outcome and mirrors it to the genomes_total metric.
func (s *Stats) Record(source, outcome string) {
	bySource, ok := s.counts[source]
	if !ok {
		bySource = make(map[string]int)
		s.counts[source] = bySource
	}
	bySource[outcome]++
	metrics.GenomesTotal.WithLabelValues(source, outcome).Inc()
}

// Count returns the count of one outcome for one source.
func (s *Stats) Count(source, outcome string) int {
	return s.counts[source][outcome]
}

// Total returns the count of one outcome across all sources.
func (s *Stats) Total(outcome string) int {
	n := 0
	for _, bySource := range s.counts {
		n += bySource[outcome]
	}
	return n
}

// Fields renders the counters as log fields.
func (s *Stats) Fields() []zap.Field {
	sources := make([]string, 0, len(s.counts))
	for src := range s.counts {
		sources = append(sources, src)
	}
	slices.Sort(sources)

	fields := make([]zap.Field, 0, len(sources))
	for _, src := range sources {
		fields = append(fields, zap.Any(src, s.counts[src]))
	}
	return fields
}
