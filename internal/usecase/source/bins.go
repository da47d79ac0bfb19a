package source

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/domain/quality"
	"github.com/kailas-cloud/hammersynth/internal/metrics"
	"github.com/kailas-cloud/hammersynth/internal/repository/gto"
)

// BinDirectory yields mostly-good bins from the sample subdirectories of a
// binning run. Candidates are pooled across subdirectories and capped before loading.
type BinDirectory struct {
	root  string
	paths []string
	pos   int
	opts  Options
}

// NewBinDirectory scans root for bin genome files.
func NewBinDirectory(root string, opts Options) (*BinDirectory, error) {
	opts = opts.withDefaults()
	dirs, err := gto.Subdirs(root)
	if err != nil {
		return nil, fmt.Errorf("bin directory: %w", err)
	}

	var pool []string
	for _, dir := range dirs {
		files, err := gto.List(dir, gto.BinFileFilter)
		if err != nil {
			return nil, fmt.Errorf("bin directory: %w", err)
		}
		pool = append(pool, files...)
	}
	paths := capList(opts.Rand, pool, opts.Limit)

	opts.Logger.Info("Bin genomes found",
		zap.String("root", root),
		zap.Int("samples", len(dirs)),
		zap.Int("bins", len(pool)),
		zap.Int("selected", len(paths)),
	)
	return &BinDirectory{root: root, paths: paths, opts: opts}, nil
}

// Name implements Source.
func (s *BinDirectory) Name() string { return "bins" }

// Len returns the number of selected candidates.
func (s *BinDirectory) Len() int { return len(s.paths) }

// Next returns the next mostly-good bin. Unreadable bins are logged and skipped.
func (s *BinDirectory) Next(ctx context.Context) (*genome.Genome, error) {
	for s.pos < len(s.paths) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := s.paths[s.pos]
		s.pos++

		g, err := gto.Load(path)
		if err != nil {
			s.opts.Logger.Warn("Failed to load bin", zap.String("path", path), zap.Error(err))
			s.opts.Recorder.Record(s.Name(), metrics.OutcomeLoadFailed)
			continue
		}
		if reason := quality.ClassifyStrictGood(g.Quality()); reason != quality.OK {
			s.opts.Logger.Debug("Bin rejected", zap.String("path", path), zap.String("reason", string(reason)))
			s.opts.Recorder.Record(s.Name(), metrics.OutcomeRejected)
			continue
		}
		s.opts.Logger.Info("Bin selected", zap.String("path", path), zap.Stringer("genome", g))
		return g, nil
	}
	return nil, io.EOF
}
