package source

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/metrics"
	"github.com/kailas-cloud/hammersynth/internal/repository/gto"
)

// Directory yields every genome cached in a directory, in file-name order.
// It applies no quality filter and no cap.
type Directory struct {
	dir   string
	paths []string
	pos   int
	opts  Options
}

// NewDirectory lists the genome files of dir.
func NewDirectory(dir string, opts Options) (*Directory, error) {
	opts = opts.withDefaults()
	paths, err := gto.List(dir, gto.CacheFileFilter)
	if err != nil {
		return nil, fmt.Errorf("genome directory: %w", err)
	}
	opts.Logger.Info("Cached genomes found", zap.String("dir", dir), zap.Int("genomes", len(paths)))
	return &Directory{dir: dir, paths: paths, opts: opts}, nil
}

// Name implements Source.
func (s *Directory) Name() string { return "directory" }

// Len returns the number of genome files.
func (s *Directory) Len() int { return len(s.paths) }

// Next loads the next genome. Unreadable files are logged and skipped.
func (s *Directory) Next(ctx context.Context) (*genome.Genome, error) {
	for s.pos < len(s.paths) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := s.paths[s.pos]
		s.pos++

		g, err := gto.Load(path)
		if err != nil {
			s.opts.Logger.Warn("Failed to load genome", zap.String("path", path), zap.Error(err))
			s.opts.Recorder.Record(s.Name(), metrics.OutcomeLoadFailed)
			continue
		}
		return g, nil
	}
	return nil, io.EOF
}
