package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/domain/quality"
	"github.com/kailas-cloud/hammersynth/internal/domain/sampling"
	"github.com/kailas-cloud/hammersynth/internal/metrics"
	"github.com/kailas-cloud/hammersynth/internal/repository/tabular"
)

// Evaluation report column headers.
const (
	ColGenome        = "Genome"
	ColGoodSeed      = "Good Seed"
	ColGood          = "Good"
	ColHypothetical  = "Hypothetical"
	ColFine          = "Fine"
	ColCompleteness  = "Completeness"
	ColContamination = "Contamination"
)

const progressEvery = 5000

// EvaluationReport yields genomes from a genome-evaluation report that would be
// good but for their SSU rRNA. Eligible IDs are capped, then fetched at full detail.
type EvaluationReport struct {
	ids     []string
	pos     int
	fetcher genome.Fetcher
	opts    Options
}

// evalRow exposes a report line as quality metrics.
type evalRow struct {
	row  tabular.Row
	cols map[string]int
}

func (r evalRow) Bool(key string) (bool, bool) {
	col, ok := r.cols[key]
	if !ok {
		return false, false
	}
	return r.row.Flag(col)
}

func (r evalRow) Float(key string) (float64, bool) {
	col, ok := r.cols[key]
	if !ok {
		return 0, false
	}
	v, err := r.row.Float(col)
	return v, err == nil
}

// NewEvaluationReport scans the report at path and selects the genomes to fetch.
func NewEvaluationReport(ctx context.Context, path string, fetcher genome.Fetcher, opts Options) (*EvaluationReport, error) {
	opts = opts.withDefaults()
	r, err := tabular.Open(path)
	if err != nil {
		return nil, fmt.Errorf("evaluation report: %w", err)
	}
	defer r.Close()

	cols := make(map[string]int, 6)
	for key, name := range map[string]string{
		quality.KeyHasSeed:         ColGoodSeed,
		quality.KeyGood:            ColGood,
		quality.KeyHypothetical:    ColHypothetical,
		quality.KeyFineConsistency: ColFine,
		quality.KeyCompleteness:    ColCompleteness,
		quality.KeyContamination:   ColContamination,
	} {
		if cols[key], err = r.Column(name); err != nil {
			return nil, fmt.Errorf("evaluation report %s: %w", path, err)
		}
	}
	idCol, err := r.Column(ColGenome)
	if err != nil {
		return nil, fmt.Errorf("evaluation report %s: %w", path, err)
	}

	eligible := make(map[string]struct{})
	lines, skipped, bad := 0, 0, 0
	opts.Logger.Info("Scanning evaluation report for mostly-good genomes", zap.String("path", path))
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("evaluation report %s: %w", path, err)
		}
		lines++

		switch quality.ClassifyMostlyGoodButFailingSSU(evalRow{row: row, cols: cols}) {
		case quality.OK:
			eligible[row.String(idCol)] = struct{}{}
		case quality.AlreadyGood, quality.NoSeed:
			skipped++
		default:
			bad++
		}

		if lines%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			opts.Logger.Info("Evaluation progress",
				zap.Int("processed", lines),
				zap.Int("skipped", skipped),
				zap.Int("bad", bad),
				zap.Int("kept", len(eligible)),
			)
		}
	}

	ids := sampling.SelectSet(opts.Rand, eligible, limitOrAll(opts.Limit, len(eligible)))
	opts.Logger.Info("Evaluation report scanned",
		zap.Int("processed", lines),
		zap.Int("skipped", skipped),
		zap.Int("bad", bad),
		zap.Int("eligible", len(eligible)),
		zap.Int("selected", len(ids)),
	)
	return &EvaluationReport{ids: ids, fetcher: fetcher, opts: opts}, nil
}

func limitOrAll(limit, n int) int {
	if limit <= 0 {
		return n
	}
	return limit
}

// Name implements Source.
func (s *EvaluationReport) Name() string { return "evaluation" }

// Len returns the number of selected genome IDs.
func (s *EvaluationReport) Len() int { return len(s.ids) }

// Next downloads the next selected genome. A genome missing from the
// repository is skipped; any other fetch error is returned.
func (s *EvaluationReport) Next(ctx context.Context) (*genome.Genome, error) {
	for s.pos < len(s.ids) {
		id := s.ids[s.pos]
		s.pos++

		s.opts.Logger.Info("Downloading genome", zap.String("genome", id))
		g, err := s.fetcher.Fetch(ctx, id, genome.DetailFull)
		if errors.Is(err, domain.ErrGenomeNotFound) {
			s.opts.Logger.Warn("Genome not found in repository", zap.String("genome", id))
			s.opts.Recorder.Record(s.Name(), metrics.OutcomeNotFound)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("evaluation source: %w", err)
		}
		return g, nil
	}
	return nil, io.EOF
}
