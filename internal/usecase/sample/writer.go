// Package sample writes synthetic-sample FASTA files.
package sample

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/metrics"
)

// Entry is a set of contigs labeled with a genome identity and its representative.
type Entry struct {
	GenomeID string
	Name     string
	Contigs  []genome.Contig
	RepID    string
	Distance float64
}

// Writer emits one FASTA record per sampled contig.
// Header: "<genomeId>:<contigId> <name>\t<repId>\t<distance>".
type Writer struct {
	out       *xopen.Writer
	path      string
	fraction  float64
	rng       *rand.Rand
	logger    *zap.Logger
	sequences int
	genomes   int
	closed    bool
}

// NewWriter opens path for writing ("-" is stdout, ".gz" compresses).
// fraction is the per-contig inclusion probability in (0,1].
func NewWriter(path string, fraction float64, rng *rand.Rand, logger *zap.Logger) (*Writer, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, domain.NewConfigError("contigFrac", fmt.Sprintf("%v is not in (0,1]", fraction))
	}
	out, err := xopen.Wopen(path)
	if err != nil {
		return nil, fmt.Errorf("open sample output %s: %w", path, err)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if path == "-" {
		logger.Info("Sequences will be written to the standard output")
	} else {
		logger.Info("Sequences will be written to file", zap.String("path", path))
	}
	return &Writer{out: out, path: path, fraction: fraction, rng: rng, logger: logger}, nil
}

// WriteGenome writes the sampled contigs of g labeled with its closest representative.
func (w *Writer) WriteGenome(g *genome.Genome, repID string, distance float64) (int, error) {
	return w.Write(Entry{
		GenomeID: g.ID(),
		Name:     g.Name(),
		Contigs:  g.Contigs(),
		RepID:    repID,
		Distance: distance,
	})
}

// Write writes the sampled contigs of e and returns how many were written.
func (w *Writer) Write(e Entry) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write %s: sample writer closed", e.GenomeID)
	}
	w.logger.Debug("Writing contigs", zap.String("genome", e.GenomeID), zap.String("name", e.Name))

	comment := e.Name + "\t" + e.RepID + "\t" + strconv.FormatFloat(e.Distance, 'f', -1, 64)
	n := 0
	for _, c := range e.Contigs {
		if w.rng.Float64() >= w.fraction {
			continue
		}
		label := e.GenomeID + ":" + c.ID()
		record := &fastx.Record{
			ID:   []byte(label),
			Name: []byte(label + " " + comment),
			Seq:  &seq.Seq{Alphabet: seq.DNAredundant, Seq: []byte(c.Sequence())},
		}
		record.FormatToWriter(w.out, 0)
		n++
	}
	w.sequences += n
	w.genomes++
	metrics.SequencesWrittenTotal.Add(float64(n))
	return n, nil
}

// Sequences returns the number of records written.
func (w *Writer) Sequences() int { return w.sequences }

// Genomes returns the number of genomes written.
func (w *Writer) Genomes() int { return w.genomes }

// Close flushes and closes the output. Subsequent calls are no-ops.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.logger.Info("Sample output closed",
		zap.String("path", w.path),
		zap.Int("sequences", w.sequences),
		zap.Int("genomes", w.genomes),
	)
	if err := w.out.Close(); err != nil {
		return fmt.Errorf("close sample output %s: %w", w.path, err)
	}
	return nil
}
