package synth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/repository/gto"
	"github.com/kailas-cloud/hammersynth/internal/repository/repgen"
	"github.com/kailas-cloud/hammersynth/internal/usecase/match"
	"github.com/kailas-cloud/hammersynth/internal/usecase/sample"
	"github.com/kailas-cloud/hammersynth/internal/usecase/source"
)

// Budget bounds a sample.
type Budget struct {
	MaxGenomes     int
	ContigFraction float64
}

// Validate checks the budget. A zero MaxGenomes is allowed only when uncapped is true.
func (b Budget) Validate(uncapped bool) error {
	if b.ContigFraction <= 0 || b.ContigFraction > 1 {
		return domain.NewConfigError("contigFrac", fmt.Sprintf("%v is not in (0,1]", b.ContigFraction))
	}
	if b.MaxGenomes < 1 && !(uncapped && b.MaxGenomes == 0) {
		return domain.NewConfigError("max", "must be at least 1")
	}
	return nil
}

// SynthOptions configure Synth.
type SynthOptions struct {
	RepDB    string
	OutDir   string
	BinDir   string
	EvalFile string
	Output   string
	Clear    bool
	Budget
}

// Synth builds a sample from an evaluation report and/or a binning directory.
// Matches are written regardless of the similarity threshold and every
// written genome is cached in OutDir.
func (r *Run) Synth(ctx context.Context, opts SynthOptions, fetcher genome.Fetcher) (sum Summary, err error) {
	if opts.BinDir == "" && opts.EvalFile == "" {
		return sum, domain.ErrNoSource
	}
	if err := opts.Validate(false); err != nil {
		return sum, err
	}
	if opts.EvalFile != "" && fetcher == nil {
		return sum, domain.NewConfigError("evalFile", "no genome repository configured")
	}
	matcher, err := r.loadMatcher(opts.RepDB)
	if err != nil {
		return sum, err
	}
	if err := r.prepareOutDir(opts.OutDir, opts.Clear); err != nil {
		return sum, err
	}

	srcOpts := r.sourceOptions(opts.MaxGenomes)
	var sources []source.GenomeSource
	if opts.EvalFile != "" {
		src, err := source.NewEvaluationReport(ctx, opts.EvalFile, fetcher, srcOpts)
		if err != nil {
			return sum, err
		}
		sources = append(sources, src)
	}
	if opts.BinDir != "" {
		src, err := source.NewBinDirectory(opts.BinDir, srcOpts)
		if err != nil {
			return sum, err
		}
		sources = append(sources, src)
	}

	return r.runGenomes(ctx, matcher, sources, opts.Output, opts.ContigFraction,
		genomePolicy{saveDir: opts.OutDir})
}

// BinSynthOptions configure BinSynth.
type BinSynthOptions struct {
	RepDB  string
	BinDir string
	OutDir string
	Output string
	Budget
}

// BinSynth writes every mostly-good bin of one binning directory. MaxGenomes
// of zero means no cap.
func (r *Run) BinSynth(ctx context.Context, opts BinSynthOptions) (sum Summary, err error) {
	if opts.BinDir == "" {
		return sum, domain.ErrNoSource
	}
	if err := opts.Validate(true); err != nil {
		return sum, err
	}
	matcher, err := r.loadMatcher(opts.RepDB)
	if err != nil {
		return sum, err
	}
	if err := r.prepareOutDir(opts.OutDir, false); err != nil {
		return sum, err
	}
	src, err := source.NewBinDirectory(opts.BinDir, r.sourceOptions(opts.MaxGenomes))
	if err != nil {
		return sum, err
	}

	return r.runGenomes(ctx, matcher, []source.GenomeSource{src}, opts.Output, opts.ContigFraction,
		genomePolicy{saveDir: opts.OutDir})
}

// RewriteOptions configure Rewrite.
type RewriteOptions struct {
	RepDB          string
	InDir          string
	Output         string
	ContigFraction float64
}

// Rewrite relabels a cached genome directory against another reference
// database. Genomes without a match above the threshold are dropped.
func (r *Run) Rewrite(ctx context.Context, opts RewriteOptions) (sum Summary, err error) {
	if opts.InDir == "" {
		return sum, domain.ErrNoSource
	}
	if err := (Budget{MaxGenomes: 0, ContigFraction: opts.ContigFraction}).Validate(true); err != nil {
		return sum, err
	}
	matcher, err := r.loadMatcher(opts.RepDB)
	if err != nil {
		return sum, err
	}
	src, err := source.NewDirectory(opts.InDir, r.sourceOptions(0))
	if err != nil {
		return sum, err
	}

	return r.runGenomes(ctx, matcher, []source.GenomeSource{src}, opts.Output, opts.ContigFraction,
		genomePolicy{requireThreshold: true})
}

// NeighborOptions configure Neighbors.
type NeighborOptions struct {
	Table          string
	Output         string
	MinGenomes     int
	ContigFraction float64
	Fetch          source.FetchMode
	Progress       Progress
}

// Neighbors writes a balanced sample straight from a neighbor table.
func (r *Run) Neighbors(ctx context.Context, opts NeighborOptions, fetcher genome.Fetcher) (sum Summary, err error) {
	if opts.Table == "" {
		return sum, domain.ErrNoSource
	}
	if err := (Budget{ContigFraction: opts.ContigFraction}).Validate(true); err != nil {
		return sum, err
	}
	if fetcher == nil {
		return sum, domain.NewConfigError("neighbors", "no genome repository configured")
	}
	srcOpts := r.sourceOptions(0)
	if opts.Progress != nil {
		srcOpts.Progress = opts.Progress
	}
	src, err := source.NewRepgenNeighbors(opts.Table, opts.MinGenomes, opts.Fetch, fetcher, srcOpts)
	if err != nil {
		return sum, err
	}

	w, err := sample.NewWriter(opts.Output, opts.ContigFraction, r.Rand, r.Logger)
	if err != nil {
		return sum, err
	}
	defer closeWriter(w, &err)

	if opts.Progress != nil {
		opts.Progress.Start(src.Len())
		defer opts.Progress.Finish()
	}
	if err := r.processEntries(ctx, src, w); err != nil {
		return sum, err
	}
	r.Logger.Info("All done", append(r.Stats.Fields(), zap.Int("genomes", w.Genomes()))...)
	return Summary{Genomes: w.Genomes(), Sequences: w.Sequences()}, nil
}

func (r *Run) runGenomes(
	ctx context.Context,
	matcher *match.Service,
	sources []source.GenomeSource,
	output string,
	fraction float64,
	policy genomePolicy,
) (sum Summary, err error) {
	w, err := sample.NewWriter(output, fraction, r.Rand, r.Logger)
	if err != nil {
		return sum, err
	}
	defer closeWriter(w, &err)

	if err := r.processGenomes(ctx, matcher, sources, w, policy); err != nil {
		return sum, err
	}
	r.Logger.Info("All done", append(r.Stats.Fields(), zap.Int("genomes", w.Genomes()))...)
	return Summary{Genomes: w.Genomes(), Sequences: w.Sequences()}, nil
}

func (r *Run) loadMatcher(path string) (*match.Service, error) {
	if path == "" {
		return nil, domain.NewConfigError("repdb", "reference database path is required")
	}
	r.Logger.Info("Loading representative-genome database", zap.String("path", path))
	db, err := repgen.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load reference database: %w", err)
	}
	r.Logger.Info("Representative-genome database loaded",
		zap.Int("representatives", db.Size()),
		zap.Int("kmer_size", db.K()),
		zap.Int("threshold", db.Threshold()),
	)
	return match.New(db), nil
}

func (r *Run) prepareOutDir(dir string, clear bool) error {
	if dir == "" {
		return domain.NewConfigError("outDir", "genome output directory is required")
	}
	created, err := gto.EnsureDir(dir, clear)
	if err != nil {
		return fmt.Errorf("genome output directory: %w", err)
	}
	switch {
	case created:
		r.Logger.Info("Created genome output directory", zap.String("dir", dir))
	case clear:
		r.Logger.Info("Cleared genome output directory", zap.String("dir", dir))
	default:
		r.Logger.Info("Selected genomes will be cached", zap.String("dir", dir))
	}
	return nil
}

func (r *Run) sourceOptions(limit int) source.Options {
	return source.Options{
		Limit:    limit,
		Rand:     r.Rand,
		Logger:   r.Logger,
		Recorder: r.Stats,
	}
}
