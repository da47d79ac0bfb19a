package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/domain/neighbor"
	"github.com/kailas-cloud/hammersynth/internal/domain/sampling"
	"github.com/kailas-cloud/hammersynth/internal/metrics"
	"github.com/kailas-cloud/hammersynth/internal/repository/tabular"
	"github.com/kailas-cloud/hammersynth/internal/usecase/sample"
)

// FetchMode selects whose contigs a neighbor entry carries.
type FetchMode string

const (
	// FetchRepresentative emits the representative's contigs under the neighbor's label.
	FetchRepresentative FetchMode = "representative"
	// FetchNeighbor emits the neighbor's own contigs.
	FetchNeighbor FetchMode = "neighbor"
)

// ParseFetchMode validates a fetch mode name.
func ParseFetchMode(s string) (FetchMode, error) {
	switch m := FetchMode(s); m {
	case FetchRepresentative, FetchNeighbor:
		return m, nil
	default:
		return "", domain.NewConfigError("fetch", fmt.Sprintf("%q is not representative or neighbor", s))
	}
}

type neighborPick struct {
	repID string
	n     neighbor.Neighbor
}

// RepgenNeighbors builds a balanced sample from a precomputed neighbor table
// without matching: neighbors are allocated round-robin across representatives
// and picked evenly along each distance-sorted list.
type RepgenNeighbors struct {
	picks   []neighborPick
	pos     int
	mode    FetchMode
	fetcher genome.Fetcher
	opts    Options
	warned  bool
	lastID  string
	last    *genome.Genome
}

// NewRepgenNeighbors reads the neighbor table at path and plans the sample.
// The table needs genome_id, genome_name, rep_id and distance columns.
func NewRepgenNeighbors(path string, minGenomes int, mode FetchMode, fetcher genome.Fetcher, opts Options) (*RepgenNeighbors, error) {
	opts = opts.withDefaults()
	if minGenomes < 1 {
		return nil, domain.NewConfigError("minGenomes", "must be at least 1")
	}
	if _, err := ParseFetchMode(string(mode)); err != nil {
		return nil, err
	}

	hood, rows, err := readNeighborhood(path)
	if err != nil {
		return nil, err
	}
	hood.Sort()

	plan := neighbor.Allocate(hood, minGenomes)
	var picks []neighborPick
	for _, repID := range hood.RepIDs() {
		for _, n := range sampling.Spaced(hood[repID], plan[repID]) {
			picks = append(picks, neighborPick{repID: repID, n: n})
		}
	}

	opts.Logger.Info("Neighbor sample planned",
		zap.String("path", path),
		zap.Int("rows", rows),
		zap.Int("representatives", len(hood)),
		zap.Int("neighbors", hood.Size()),
		zap.Int("planned", len(picks)),
		zap.String("fetch", string(mode)),
	)
	return &RepgenNeighbors{picks: picks, mode: mode, fetcher: fetcher, opts: opts}, nil
}

func readNeighborhood(path string) (neighbor.Neighborhood, int, error) {
	r, err := tabular.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("neighbor table: %w", err)
	}
	defer r.Close()

	idCol, err := r.FindColumn("genome_id", "genome")
	if err != nil {
		return nil, 0, fmt.Errorf("neighbor table %s: %w", path, err)
	}
	nameCol, err := r.FindColumn("genome_name", "name")
	if err != nil {
		return nil, 0, fmt.Errorf("neighbor table %s: %w", path, err)
	}
	repCol, err := r.FindColumn("rep_id", "rep")
	if err != nil {
		return nil, 0, fmt.Errorf("neighbor table %s: %w", path, err)
	}
	distCol, err := r.FindColumn("distance", "dist")
	if err != nil {
		return nil, 0, fmt.Errorf("neighbor table %s: %w", path, err)
	}

	hood := neighbor.Neighborhood{}
	rows := 0
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return hood, rows, nil
		}
		if err != nil {
			return nil, 0, fmt.Errorf("neighbor table %s: %w", path, err)
		}
		rows++

		id, repID := row.String(idCol), row.String(repCol)
		if id == repID {
			continue
		}
		dist, err := row.Float(distCol)
		if err != nil {
			return nil, 0, fmt.Errorf("neighbor table %s: %w", path, err)
		}
		hood.Add(repID, neighbor.Neighbor{ID: id, Name: row.String(nameCol), Distance: dist})
	}
}

// Name implements Source.
func (s *RepgenNeighbors) Name() string { return "neighbors" }

// Len returns the number of planned entries.
func (s *RepgenNeighbors) Len() int { return len(s.picks) }

// Next fetches the contigs for the next planned neighbor.
func (s *RepgenNeighbors) Next(ctx context.Context) (sample.Entry, error) {
	for s.pos < len(s.picks) {
		p := s.picks[s.pos]
		s.pos++
		s.opts.Progress.Increment()

		id := p.n.ID
		if s.mode == FetchRepresentative {
			id = p.repID
			if !s.warned {
				s.opts.Logger.Warn("Neighbor entries carry the representative's contigs under the neighbor's label; use neighbor fetch mode for the neighbor's own sequence")
				s.warned = true
			}
		}

		g, err := s.fetch(ctx, id)
		if errors.Is(err, domain.ErrGenomeNotFound) {
			s.opts.Logger.Warn("Genome not found in repository", zap.String("genome", id))
			s.opts.Recorder.Record(s.Name(), metrics.OutcomeNotFound)
			continue
		}
		if err != nil {
			return sample.Entry{}, fmt.Errorf("neighbor source: %w", err)
		}

		return sample.Entry{
			GenomeID: p.n.ID,
			Name:     p.n.Name,
			Contigs:  g.Contigs(),
			RepID:    p.repID,
			Distance: p.n.Distance,
		}, nil
	}
	return sample.Entry{}, io.EOF
}

// fetch reuses the previous genome when consecutive picks need the same one.
func (s *RepgenNeighbors) fetch(ctx context.Context, id string) (*genome.Genome, error) {
	if s.last != nil && s.lastID == id {
		return s.last, nil
	}
	g, err := s.fetcher.Fetch(ctx, id, genome.DetailContigs)
	if err != nil {
		return nil, err
	}
	s.last, s.lastID = g, id
	return g, nil
}
