// Package match finds the nearest representative genome of a genome by its seed protein.
package match

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/hammersynth/internal/domain"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	dommatch "github.com/kailas-cloud/hammersynth/internal/domain/match"
)

// SeedRole is the functional assignment of the seed protein (PheS).
const SeedRole = "Phenylalanyl-tRNA synthetase alpha chain (EC 6.1.1.20)"

// SeedProtein returns the longest translation among protein-coding features
// assigned SeedRole. Ties keep the first feature found.
func SeedProtein(g *genome.Genome) (string, bool) {
	best := ""
	for _, f := range g.Features() {
		if !isPeg(f) || f.Function() != SeedRole {
			continue
		}
		if prot := f.Translation(); len(prot) > len(best) {
			best = prot
		}
	}
	return best, best != ""
}

func isPeg(f genome.Feature) bool {
	return strings.EqualFold(f.Kind(), "CDS") || strings.EqualFold(f.Kind(), "peg")
}

// Service matches genomes against one reference snapshot.
type Service struct {
	ref Reference
}

// New creates a matcher over ref.
func New(ref Reference) *Service {
	return &Service{ref: ref}
}

// Closest delegates to the reference database.
func (s *Service) Closest(seed string) dommatch.Result {
	return s.ref.Closest(seed)
}

// Threshold returns the reference similarity threshold.
func (s *Service) Threshold() int {
	return s.ref.Threshold()
}

// Match extracts the seed protein of g and finds its closest representative.
// A genome without a seed protein yields domain.ErrNoSeedProtein.
func (s *Service) Match(g *genome.Genome) (dommatch.Result, error) {
	seed, ok := SeedProtein(g)
	if !ok {
		return dommatch.Result{}, fmt.Errorf("genome %s: %w", g.ID(), domain.ErrNoSeedProtein)
	}
	return s.ref.Closest(seed), nil
}
