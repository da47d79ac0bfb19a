// Package bincheck charts binning quality against seed-protein distance.
package bincheck

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/kmers"
	"github.com/kailas-cloud/hammersynth/internal/repository/gto"
	"github.com/kailas-cloud/hammersynth/internal/repository/tabular"
	"github.com/kailas-cloud/hammersynth/internal/usecase/match"
)

// IndexFile is the evaluation index of a sample directory.
const IndexFile = "Eval/index.tbl"

// Header is the first line of the report.
const Header = "sample\tbin_id\tbin_name\tdistance\tconsistency\tcompleteness\tcontamination\tgood\tbin_protein\tref_protein"

// Index columns, counted from zero.
const (
	colBinID         = 1
	colBinName       = 2
	colRefID         = 3
	colConsistency   = 9
	colCompleteness  = 10
	colContamination = 11
	colGood          = 14
)

// Progress displays advancement through the sample directories.
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

// Options configure Check.
type Options struct {
	MasterDir string
	K         int
	Progress  Progress
	Logger    *zap.Logger
}

// Row is one report line.
type Row struct {
	Sample        string
	BinID         string
	BinName       string
	Distance      float64
	Consistency   float64
	Completeness  float64
	Contamination float64
	Good          bool
	BinProtein    string
	RefProtein    string
}

// Summary reports what Check saw.
type Summary struct {
	Samples int
	Skipped int
	Rows    int
}

// Check writes one report row per indexed bin whose bin and reference genomes
// both carry a seed protein, and accumulates the totals.
func Check(ctx context.Context, opts Options, out io.Writer, totals *Totals) (Summary, error) {
	var sum Summary
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(opts.MasterDir)
	if err != nil {
		return sum, fmt.Errorf("master directory: %w", err)
	}
	if !info.IsDir() {
		return sum, domain.NewConfigError("masterDir", opts.MasterDir+" is not a directory")
	}
	dirs, err := gto.Subdirs(opts.MasterDir)
	if err != nil {
		return sum, err
	}
	logger.Info("Binning subdirectories found", zap.Int("count", len(dirs)), zap.String("dir", opts.MasterDir))

	bw := bufio.NewWriter(out)
	if _, err := fmt.Fprintln(bw, Header); err != nil {
		return sum, err
	}
	if opts.Progress != nil {
		opts.Progress.Start(len(dirs))
		defer opts.Progress.Finish()
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		rows, err := checkSample(dir, opts.K, logger)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("No index file found", zap.String("dir", dir))
			sum.Skipped++
		case err != nil:
			return sum, err
		default:
			sum.Samples++
			for _, r := range rows {
				writeRow(bw, r)
				if totals != nil {
					totals.Add(r.Distance, r.Good)
				}
			}
			sum.Rows += len(rows)
		}
		if opts.Progress != nil {
			opts.Progress.Increment()
		}
	}
	if err := bw.Flush(); err != nil {
		return sum, fmt.Errorf("write report: %w", err)
	}
	logger.Info("Bin check complete",
		zap.Int("samples", sum.Samples),
		zap.Int("skipped", sum.Skipped),
		zap.Int("rows", sum.Rows),
	)
	return sum, nil
}

func writeRow(w io.Writer, r Row) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%4.3f\t%6.2f\t%6.2f\t%6.2f\t%t\t%s\t%s\n",
		r.Sample, r.BinID, r.BinName, r.Distance,
		r.Consistency, r.Completeness, r.Contamination, r.Good,
		r.BinProtein, r.RefProtein)
}

// checkSample reads the seed proteins of one sample directory and joins them
// with its index file.
func checkSample(dir string, k int, logger *zap.Logger) ([]Row, error) {
	indexPath := filepath.Join(dir, IndexFile)
	if _, err := os.Stat(indexPath); err != nil {
		return nil, err
	}
	index, err := tabular.Open(indexPath)
	if err != nil {
		return nil, err
	}
	defer index.Close()

	seeds, err := loadSeeds(dir, k, logger)
	if err != nil {
		return nil, err
	}

	sample := filepath.Base(dir)
	logger.Info("Processing sample", zap.String("sample", sample), zap.Int("seeds", len(seeds)))
	var rows []Row
	for {
		line, err := index.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sample, err)
		}
		binSeed, ok1 := seeds[line.String(colBinID)]
		refSeed, ok2 := seeds[line.String(colRefID)]
		if !ok1 || !ok2 {
			continue
		}
		r, err := parseRow(line)
		if err != nil {
			logger.Warn("Skipping malformed index line",
				zap.String("sample", sample),
				zap.Int("line", line.Line()),
				zap.Error(err),
			)
			continue
		}
		r.Sample = sample
		r.Distance = binSeed.Distance(refSeed)
		r.BinProtein = binSeed.Protein()
		r.RefProtein = refSeed.Protein()
		rows = append(rows, r)
	}
}

func parseRow(line tabular.Row) (Row, error) {
	r := Row{
		BinID:   line.String(colBinID),
		BinName: line.String(colBinName),
	}
	var err error
	if r.Consistency, err = line.Float(colConsistency); err != nil {
		return r, err
	}
	if r.Completeness, err = line.Float(colCompleteness); err != nil {
		return r, err
	}
	if r.Contamination, err = line.Float(colContamination); err != nil {
		return r, err
	}
	good, ok := line.Flag(colGood)
	if !ok {
		return r, fmt.Errorf("line %d good flag %q: %w", line.Line(), line.String(colGood), domain.ErrMalformedRecord)
	}
	r.Good = good
	return r, nil
}

// loadSeeds maps genome IDs to seed-protein k-mers for every genome file in dir.
func loadSeeds(dir string, k int, logger *zap.Logger) (map[string]*kmers.Set, error) {
	files, err := gto.List(dir, gto.GenomeFileFilter)
	if err != nil {
		return nil, err
	}
	seeds := make(map[string]*kmers.Set, len(files))
	for _, path := range files {
		g, err := gto.Load(path)
		if err != nil {
			logger.Warn("Failed to load genome", zap.String("path", path), zap.Error(err))
			continue
		}
		prot, ok := match.SeedProtein(g)
		if !ok {
			logger.Warn("No seed protein found", zap.Stringer("genome", g))
			continue
		}
		seeds[g.ID()] = kmers.New(prot, k)
	}
	return seeds, nil
}
