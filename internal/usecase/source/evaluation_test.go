package source

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/metrics"
)

const evalHeader = "Genome\tName\tGood Seed\tGood\tHypothetical\tFine\tCompleteness\tContamination\n"

func writeEval(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patric.eval.tbl")
	writeFile(t, path, evalHeader+strings.Join(rows, "\n")+"\n")
	return path
}

func TestEvaluationReport_Scenario(t *testing.T) {
	path := writeEval(t,
		"100.1\tfully good\tY\tY\t10\t95\t99\t1",
		"200.1\tdirty\tY\tN\t10\t95\t99\t10.5",
		"300.1\tmostly good\tY\tN\t30\t80\t90\t10",
	)
	fetcher := &mockFetcher{genomes: map[string]*genome.Genome{
		"100.1": contigGenome("100.1"),
		"200.1": contigGenome("200.1"),
		"300.1": contigGenome("300.1"),
	}}

	opts, _ := testOptions(10)
	src, err := NewEvaluationReport(context.Background(), path, fetcher, opts)
	if err != nil {
		t.Fatalf("NewEvaluationReport: %v", err)
	}

	ids := drainGenomes(t, src)
	if len(ids) != 1 || ids[0] != "300.1" {
		t.Fatalf("expected [300.1], got %v", ids)
	}
	if len(fetcher.details) != 1 || fetcher.details[0] != genome.DetailFull {
		t.Errorf("expected one full-detail fetch, got %v", fetcher.details)
	}
}

func TestEvaluationReport_MissingValuesExclude(t *testing.T) {
	path := writeEval(t,
		"400.1\tno seed\tN\tN\t10\t95\t99\t1",
		"500.1\tblank completeness\tY\tN\t10\t95\t\t1",
		"600.1\tshort row\tY\tN",
		"700.1\tblank good\tY\t\t10\t95\t99\t1",
	)
	opts, _ := testOptions(10)
	src, err := NewEvaluationReport(context.Background(), path, &mockFetcher{}, opts)
	if err != nil {
		t.Fatalf("NewEvaluationReport: %v", err)
	}
	if src.Len() != 0 {
		t.Fatalf("expected no eligible genomes, got %d", src.Len())
	}
}

func TestEvaluationReport_Cap(t *testing.T) {
	var rows []string
	for _, id := range []string{"1.1", "2.1", "3.1", "4.1", "5.1"} {
		rows = append(rows, id+"\tx\t1\t0\t5\t99\t99\t0")
	}
	opts, _ := testOptions(3)
	src, err := NewEvaluationReport(context.Background(), writeEval(t, rows...), &mockFetcher{}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if src.Len() != 3 {
		t.Fatalf("expected 3 selected, got %d", src.Len())
	}
}

func TestEvaluationReport_FetchErrors(t *testing.T) {
	path := writeEval(t,
		"1.1\tx\tY\tN\t5\t99\t99\t0",
		"2.1\tx\tY\tN\t5\t99\t99\t0",
	)

	t.Run("not found is skipped", func(t *testing.T) {
		fetcher := &mockFetcher{genomes: map[string]*genome.Genome{"2.1": contigGenome("2.1")}}
		opts, rec := testOptions(10)
		src, err := NewEvaluationReport(context.Background(), path, fetcher, opts)
		if err != nil {
			t.Fatal(err)
		}
		ids := drainGenomes(t, src)
		if len(ids) != 1 || ids[0] != "2.1" {
			t.Fatalf("expected [2.1], got %v", ids)
		}
		if rec.outcomes[metrics.OutcomeNotFound] != 1 {
			t.Errorf("expected 1 not-found, got %v", rec.outcomes)
		}
	})

	t.Run("transport error aborts", func(t *testing.T) {
		boom := errors.New("connection reset")
		fetcher := &mockFetcher{errs: map[string]error{"1.1": boom, "2.1": boom}}
		opts, _ := testOptions(10)
		src, err := NewEvaluationReport(context.Background(), path, fetcher, opts)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := src.Next(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("expected fetch error, got %v", err)
		}
	})
}

func TestEvaluationReport_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tbl")
	writeFile(t, path, "Genome\tGood\n1.1\tY\n")
	opts, _ := testOptions(10)
	_, err := NewEvaluationReport(context.Background(), path, &mockFetcher{}, opts)
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}
