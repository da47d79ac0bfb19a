package synth

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/metrics"
	"github.com/kailas-cloud/hammersynth/internal/repository/gto"
	"github.com/kailas-cloud/hammersynth/internal/usecase/match"
	"github.com/kailas-cloud/hammersynth/internal/usecase/sample"
	"github.com/kailas-cloud/hammersynth/internal/usecase/source"
)

// Progress displays advancement through a known number of steps.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

// Summary reports what a driver wrote.
type Summary struct {
	Genomes   int
	Sequences int
}

// genomePolicy tunes processGenomes for each driver.
type genomePolicy struct {
	// requireThreshold drops matches below the reference threshold.
	requireThreshold bool
	// saveDir receives a copy of each written genome when set.
	saveDir string
}

// processGenomes drains the sources in order, matching and writing each genome.
func (r *Run) processGenomes(
	ctx context.Context,
	matcher *match.Service,
	sources []source.GenomeSource,
	w *sample.Writer,
	policy genomePolicy,
) error {
	for _, src := range sources {
		r.Logger.Info("Processing source", zap.String("source", src.Name()))
		for {
			g, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
			if err := r.processGenome(matcher, src.Name(), g, w, policy); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Run) processGenome(matcher *match.Service, srcName string, g *genome.Genome, w *sample.Writer, policy genomePolicy) error {
	res, err := matcher.Match(g)
	if errors.Is(err, domain.ErrNoSeedProtein) {
		r.Logger.Info("No seed protein", zap.Stringer("genome", g))
		r.Stats.Record(srcName, metrics.OutcomeNoSeed)
		return nil
	}
	if err != nil {
		return fmt.Errorf("match %s: %w", g.ID(), err)
	}
	if policy.requireThreshold && !res.Passes() {
		r.Logger.Warn("No close representative",
			zap.Stringer("genome", g),
			zap.String("closest", res.RepID()),
			zap.Int("similarity", res.Similarity()),
			zap.Int("threshold", matcher.Threshold()),
		)
		r.Stats.Record(srcName, metrics.OutcomeNoMatch)
		return nil
	}

	n, err := w.WriteGenome(g, res.RepID(), res.Distance())
	if err != nil {
		return err
	}
	if policy.saveDir != "" {
		if _, err := gto.SaveToDir(g, policy.saveDir); err != nil {
			return fmt.Errorf("cache genome %s: %w", g.ID(), err)
		}
	}
	r.Logger.Info("Genome written",
		zap.Stringer("genome", g),
		zap.String("rep", res.RepID()),
		zap.Float64("distance", res.Distance()),
		zap.Int("sequences", n),
	)
	r.Stats.Record(srcName, metrics.OutcomeWritten)
	return nil
}

// processEntries writes pre-labeled entries without matching.
func (r *Run) processEntries(ctx context.Context, src source.Source[sample.Entry], w *sample.Writer) error {
	for {
		e, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("source %s: %w", src.Name(), err)
		}
		if _, err := w.Write(e); err != nil {
			return err
		}
		r.Stats.Record(src.Name(), metrics.OutcomeWritten)
	}
}

// closeWriter closes w and keeps the first error.
func closeWriter(w *sample.Writer, err *error) {
	if cerr := w.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
