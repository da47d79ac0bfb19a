package source

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/domain/quality"
	"github.com/kailas-cloud/hammersynth/internal/repository/gto"
)

// --- Mocks ---

type mockFetcher struct {
	genomes map[string]*genome.Genome
	errs    map[string]error
	calls   []string
	details []genome.Detail
}

func (m *mockFetcher) Fetch(_ context.Context, id string, detail genome.Detail) (*genome.Genome, error) {
	m.calls = append(m.calls, id)
	m.details = append(m.details, detail)
	if err, ok := m.errs[id]; ok {
		return nil, err
	}
	if g, ok := m.genomes[id]; ok {
		return g, nil
	}
	return nil, domain.ErrGenomeNotFound
}

type mockRecorder struct {
	outcomes map[string]int
}

func (m *mockRecorder) Record(_ string, outcome string) {
	if m.outcomes == nil {
		m.outcomes = map[string]int{}
	}
	m.outcomes[outcome]++
}

// --- Helpers ---

func testOptions(limit int) (Options, *mockRecorder) {
	rec := &mockRecorder{}
	return Options{
		Limit:    limit,
		Rand:     rand.New(rand.NewPCG(42, 1)),
		Logger:   zap.NewNop(),
		Recorder: rec,
	}, rec
}

func contigGenome(id string) *genome.Genome {
	return genome.Reconstruct(id, "genome "+id,
		[]genome.Contig{genome.NewContig(id+".con.0001", "ACGTACGT")}, nil, nil)
}

func writeBin(t *testing.T, dir, file, id string, mostlyGood bool) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	g := genome.Reconstruct(id, "bin "+id, []genome.Contig{genome.NewContig("c1", "ACGT")}, nil,
		genome.Quality{quality.KeyMostlyGood: mostlyGood})
	if err := gto.Save(g, filepath.Join(dir, file)); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
