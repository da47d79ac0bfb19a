package sample

import (
	"errors"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
)

func testGenome(n int) *genome.Genome {
	contigs := make([]genome.Contig, n)
	for i := range contigs {
		contigs[i] = genome.NewContig("NODE_"+string(rune('A'+i)), strings.Repeat("ACGT", i+1))
	}
	return genome.Reconstruct("1280.100", "Staphylococcus aureus", contigs, nil, nil)
}

type header struct {
	label, name, rep, dist string
}

func readBack(t *testing.T, path string) ([]header, []string) {
	t.Helper()
	reader, err := fastx.NewReader(seq.DNAredundant, path, fastx.DefaultIDRegexp)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer reader.Close()

	var headers []header
	var seqs []string
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("read: %v", err)
		}
		label := string(record.ID)
		comment := strings.TrimPrefix(string(record.Name), label+" ")
		parts := strings.Split(comment, "\t")
		if len(parts) != 3 {
			t.Fatalf("unexpected comment %q", comment)
		}
		headers = append(headers, header{label, parts[0], parts[1], parts[2]})
		seqs = append(seqs, string(record.Seq.Seq))
	}
	return headers, seqs
}

func TestWriter_FullFractionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.fa")
	w, err := NewWriter(path, 1.0, rand.New(rand.NewPCG(1, 2)), zap.NewNop())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	g := testGenome(4)

	n, err := w.WriteGenome(g, "1280.10", 0.125)
	if err != nil {
		t.Fatalf("WriteGenome: %v", err)
	}
	if n != 4 || w.Sequences() != 4 || w.Genomes() != 1 {
		t.Fatalf("unexpected counts n=%d seq=%d genomes=%d", n, w.Sequences(), w.Genomes())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	headers, seqs := readBack(t, path)
	want := map[string]string{}
	for _, c := range g.Contigs() {
		want["1280.100:"+c.ID()] = c.Sequence()
	}
	if len(headers) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(headers))
	}
	for i, h := range headers {
		s, ok := want[h.label]
		if !ok {
			t.Errorf("unexpected label %q", h.label)
			continue
		}
		if seqs[i] != s {
			t.Errorf("%s: sequence mismatch", h.label)
		}
		if h.name != "Staphylococcus aureus" || h.rep != "1280.10" || h.dist != "0.125" {
			t.Errorf("unexpected header %+v", h)
		}
		delete(want, h.label)
	}
}

func TestWriter_FractionBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	path := filepath.Join(t.TempDir(), "sample.fa")
	w, err := NewWriter(path, 0.5, rng, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	total := 0
	for range 20 {
		n, err := w.WriteGenome(testGenome(10), "r", 0.5)
		if err != nil {
			t.Fatal(err)
		}
		if n < 0 || n > 10 {
			t.Fatalf("wrote %d of 10 contigs", n)
		}
		total += n
	}
	if total == 0 || total == 200 {
		t.Errorf("fraction 0.5 over 200 contigs wrote %d", total)
	}
	if w.Genomes() != 20 {
		t.Errorf("expected 20 genomes, got %d", w.Genomes())
	}
}

func TestWriter_InvalidFraction(t *testing.T) {
	for _, frac := range []float64{0, -0.1, 1.5} {
		_, err := NewWriter(filepath.Join(t.TempDir(), "x.fa"), frac, nil, zap.NewNop())
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Errorf("fraction %v: expected ErrInvalidConfig, got %v", frac, err)
		}
	}
}

func TestWriter_CloseIdempotent(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "x.fa.gz"), 1, nil, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := w.Write(Entry{GenomeID: "1.1"}); err == nil {
		t.Error("expected error writing after Close")
	}
}
