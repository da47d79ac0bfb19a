// Package metrics holds the Prometheus collectors of the sample builder.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hammersynth"

// Genome outcomes for GenomesTotal.
const (
	OutcomeWritten    = "written"
	OutcomeRejected   = "rejected"
	OutcomeNoSeed     = "no_seed"
	OutcomeNoMatch    = "no_match"
	OutcomeNotFound   = "not_found"
	OutcomeLoadFailed = "load_failed"
)

// Pipeline metrics.
var (
	GenomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genomes_total",
			Help:      "Genomes consumed from sources, by outcome",
		},
		[]string{"source", "outcome"},
	)

	SequencesWrittenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequences_written_total",
			Help:      "Contig records written to sample output",
		},
	)

	GenomeFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "genome_fetch_duration_seconds",
			Help:      "Remote genome fetch duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"detail"},
	)

	GenomeFetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genome_fetch_errors_total",
			Help:      "Remote genome fetch errors",
		},
		[]string{"reason"},
	)

	GenomeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genome_cache_total",
			Help:      "Genome cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerOnce sync.Once

// Register adds every collector to reg. Only the first call has an effect.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			GenomesTotal,
			SequencesWrittenTotal,
			GenomeFetchDuration,
			GenomeFetchErrorsTotal,
			GenomeCacheTotal,
			httpRequestDuration,
			httpRequestsTotal,
		)
	})
}
