package bvbrc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/domain/quality"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{BaseURL: srv.URL, PageSize: 2})
}

func genomeAPI(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing Accept header")
		}
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.RawQuery
		switch r.URL.Path {
		case "/genome/":
			if strings.Contains(q, "eq(genome_id,999.9)") {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(`[{"genome_id":"83333.1","genome_name":"Escherichia coli K-12",` +
				`"genome_quality":"Poor","checkm_completeness":98.5,"checkm_contamination":1.2}]`))
		case "/genome_sequence/":
			if strings.Contains(q, "limit(2,0)") {
				_, _ = w.Write([]byte(`[{"accession":"c1","sequence":"ACGT"},{"accession":"c2","sequence":"GG"}]`))
				return
			}
			_, _ = w.Write([]byte(`[{"accession":"c3","sequence":"TTTT"}]`))
		case "/genome_feature/":
			if strings.Contains(q, "limit(2,0)") {
				_, _ = w.Write([]byte(`[{"patric_id":"fig|83333.1.peg.1","feature_type":"CDS",` +
					`"product":"Phenylalanyl-tRNA synthetase alpha chain (EC 6.1.1.20)","aa_sequence_md5":"m1"}]`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		case "/feature_sequence/":
			if !strings.Contains(q, "in(md5,(m1))") {
				t.Errorf("unexpected md5 query %q", q)
			}
			_, _ = w.Write([]byte(`[{"md5":"m1","sequence":"MSHLAELV"}]`))
		default:
			http.NotFound(w, r)
		}
	}
}

func TestFetch_Contigs(t *testing.T) {
	c := newTestServer(t, genomeAPI(t))

	g, err := c.Fetch(context.Background(), "83333.1", genome.DetailContigs)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if g.ID() != "83333.1" || g.Name() != "Escherichia coli K-12" {
		t.Errorf("unexpected genome %s", g)
	}
	if len(g.Contigs()) != 3 {
		t.Fatalf("expected 3 contigs across pages, got %d", len(g.Contigs()))
	}
	if len(g.Features()) != 0 {
		t.Errorf("contig detail should not load features")
	}
	if good, ok := g.Quality().Bool(quality.KeyGood); !ok || good {
		t.Errorf("expected is_good=false, got %v %v", good, ok)
	}
	if v, ok := g.Quality().Float(quality.KeyCompleteness); !ok || v != 98.5 {
		t.Errorf("unexpected completeness %v %v", v, ok)
	}
	if _, ok := g.Quality().Float(quality.KeyFineConsistency); ok {
		t.Errorf("absent field should stay absent")
	}
}

func TestFetch_Full(t *testing.T) {
	c := newTestServer(t, genomeAPI(t))

	g, err := c.Fetch(context.Background(), "83333.1", genome.DetailFull)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(g.Features()) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(g.Features()))
	}
	if g.Features()[0].Translation() != "MSHLAELV" {
		t.Errorf("unexpected translation %q", g.Features()[0].Translation())
	}
}

func TestFetch_NotFound(t *testing.T) {
	c := newTestServer(t, genomeAPI(t))

	_, err := c.Fetch(context.Background(), "999.9", genome.DetailFull)
	if !errors.Is(err, domain.ErrGenomeNotFound) {
		t.Fatalf("expected ErrGenomeNotFound, got %v", err)
	}
}

func TestFetch_HTTPErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		notFound bool
	}{
		{"404 maps to not found", http.StatusNotFound, true},
		{"500 is a hard error", http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", tt.status)
			})
			_, err := c.Fetch(context.Background(), "1.1", genome.DetailContigs)
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, domain.ErrGenomeNotFound) != tt.notFound {
				t.Errorf("unexpected error classification: %v", err)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	c := newTestServer(t, genomeAPI(t))
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestErrorReason(t *testing.T) {
	if got := errorReason(domain.ErrGenomeNotFound); got != "not_found" {
		t.Errorf("got %q", got)
	}
	if got := errorReason(&statusError{Code: 502}); got != "http_status" {
		t.Errorf("got %q", got)
	}
	if got := errorReason(context.Canceled); got != "canceled" {
		t.Errorf("got %q", got)
	}
}
