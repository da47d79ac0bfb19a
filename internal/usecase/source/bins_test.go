package source

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/hammersynth/internal/metrics"
)

func drainGenomes(t *testing.T, src GenomeSource) []string {
	t.Helper()
	var ids []string
	for {
		g, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return ids
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", src.Name(), err)
		}
		ids = append(ids, g.ID())
	}
}

func TestBinDirectory_MostlyGoodOnly(t *testing.T) {
	root := t.TempDir()
	writeBin(t, filepath.Join(root, "SRR001"), "bin.1.1.gto", "1.1", true)
	writeBin(t, filepath.Join(root, "SRR002"), "bin.1.1.gto", "2.1", false)
	writeFile(t, filepath.Join(root, "index.tbl"), "not a sample dir")

	opts, rec := testOptions(10)
	src, err := NewBinDirectory(root, opts)
	if err != nil {
		t.Fatalf("NewBinDirectory: %v", err)
	}

	ids := drainGenomes(t, src)
	if len(ids) != 1 || ids[0] != "1.1" {
		t.Fatalf("expected [1.1], got %v", ids)
	}
	if rec.outcomes[metrics.OutcomeRejected] != 1 {
		t.Errorf("expected 1 rejection, got %v", rec.outcomes)
	}
}

func TestBinDirectory_CapBeforeFilter(t *testing.T) {
	root := t.TempDir()
	for i, sample := range []string{"A", "B", "C", "D"} {
		writeBin(t, filepath.Join(root, sample), "bin.1.1.gto", sample+".1", i%2 == 0)
	}

	opts, _ := testOptions(2)
	src, err := NewBinDirectory(root, opts)
	if err != nil {
		t.Fatalf("NewBinDirectory: %v", err)
	}
	if src.Len() != 2 {
		t.Fatalf("expected 2 candidates after cap, got %d", src.Len())
	}
	if ids := drainGenomes(t, src); len(ids) > 2 {
		t.Fatalf("cap exceeded: %v", ids)
	}
}

func TestBinDirectory_IgnoresOtherFilesAndSkipsBroken(t *testing.T) {
	root := t.TempDir()
	sample := filepath.Join(root, "S1")
	writeBin(t, sample, "bin.2.7.gto", "7.7", true)
	writeBin(t, sample, "unbinned.gto", "8.8", true)
	writeFile(t, filepath.Join(sample, "bin.3.1.gto"), "{broken")

	opts, rec := testOptions(0)
	src, err := NewBinDirectory(root, opts)
	if err != nil {
		t.Fatalf("NewBinDirectory: %v", err)
	}

	ids := drainGenomes(t, src)
	if len(ids) != 1 || ids[0] != "7.7" {
		t.Fatalf("expected [7.7], got %v", ids)
	}
	if rec.outcomes[metrics.OutcomeLoadFailed] != 1 {
		t.Errorf("expected 1 load failure, got %v", rec.outcomes)
	}
}

func TestBinDirectory_MissingRoot(t *testing.T) {
	opts, _ := testOptions(10)
	if _, err := NewBinDirectory(filepath.Join(t.TempDir(), "nope"), opts); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeBin(t, dir, "2.1.gto", "2.1", false)
	writeBin(t, dir, "1.1.gto", "1.1", false)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	opts, _ := testOptions(1)
	src, err := NewDirectory(dir, opts)
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	ids := drainGenomes(t, src)
	if len(ids) != 2 || ids[0] != "1.1" || ids[1] != "2.1" {
		t.Fatalf("expected every genome in name order regardless of quality or limit, got %v", ids)
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	root := t.TempDir()
	writeBin(t, filepath.Join(root, "S1"), "bin.1.1.gto", "1.1", true)

	opts, _ := testOptions(10)
	src, err := NewBinDirectory(root, opts)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
