package synth

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/domain/quality"
	"github.com/kailas-cloud/hammersynth/internal/repository/gto"
	"github.com/kailas-cloud/hammersynth/internal/usecase/match"
)

const (
	repProtA = "MSHLAELVASAKAAISQASDVAALDNVRVEYLGKKGHLTLQMTTLRELPPEERPAAGAVINEAKEQVQQALNARKAELESAALNARLAAETIDVSLPGRRIENGGLHPVTRTIDRIESFFGELGFTVATGPEIEDDYHNFDALNIPGHHPARADHDTFWFDTTRLLRTQTSGVQIRTMKAQQPPIRIIAPGRVYRNDYDQTHTPMF"
	repProtB = "MNLQELREQALAEVAAAADLAALEALRVRYLGKKGALTALLKGLGALSAEERPAVGQAINDAKRAIEAALTEKKAALEAAVLEAKLAAETIDVTLPGRRIAVGNLHPLTQTIDRIESVFASLGFEVAEGPEVEDDYHNFDALNIPGHHPARADHDTFWFDLNQLLRTQTSPMQVRHMKNHQPPIRIIIPGRVYRSDYDATHTPLF"
)

type mockFetcher struct {
	genomes map[string]*genome.Genome
	calls   []string
}

func (m *mockFetcher) Fetch(_ context.Context, id string, _ genome.Detail) (*genome.Genome, error) {
	m.calls = append(m.calls, id)
	if g, ok := m.genomes[id]; ok {
		return g, nil
	}
	return nil, domain.ErrGenomeNotFound
}

func newTestRun() *Run {
	return NewRun(zap.NewNop(), 42)
}

// writeRepDB writes a two-representative database with the given threshold.
func writeRepDB(t *testing.T, threshold int) string {
	t.Helper()
	dir := t.TempDir()
	fasta := ">REP.A Alpha representative\n" + repProtA + "\n>REP.B Beta representative\n" + repProtB + "\n"
	if err := os.WriteFile(filepath.Join(dir, "reps.faa"), []byte(fasta), 0o600); err != nil {
		t.Fatal(err)
	}
	manifest := "kmer_size: 8\nthreshold: " + strconv.Itoa(threshold) + "\nproteins: reps.faa\n"
	path := filepath.Join(dir, "rep.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// seededGenome builds a genome with a seed protein and the given quality bag.
func seededGenome(id, seed string, q genome.Quality, contigs int) *genome.Genome {
	cs := make([]genome.Contig, contigs)
	for i := range cs {
		cs[i] = genome.NewContig(id+".con."+strconv.Itoa(i+1), strings.Repeat("ACGT", 5+i))
	}
	var features []genome.Feature
	if seed != "" {
		features = append(features, genome.NewFeature("fig|"+id+".peg.1", "CDS", match.SeedRole, seed))
	}
	return genome.Reconstruct(id, "genome "+id, cs, features, q)
}

func writeGenomeFile(t *testing.T, path string, g *genome.Genome) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := gto.Save(g, path); err != nil {
		t.Fatal(err)
	}
}

func mostlyGood(v bool) genome.Quality {
	return genome.Quality{quality.KeyMostlyGood: v}
}

// fastaLabels returns the record labels of a FASTA file.
func fastaLabels(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, ">") {
			continue
		}
		label, _, _ := strings.Cut(line[1:], " ")
		labels = append(labels, label)
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return labels
}
