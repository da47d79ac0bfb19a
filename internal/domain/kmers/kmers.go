// Package kmers implements protein k-mer sets and the k-mer distance used to
// compare seed proteins.
package kmers

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultK is the k-mer length used for seed-protein comparison.
const DefaultK = 8

// Set is the set of distinct k-mers of one protein sequence.
type Set struct {
	protein string
	k       int
	hashes  map[uint64]struct{}
}

// New builds the k-mer set of a protein. k < 1 falls back to DefaultK.
func New(protein string, k int) *Set {
	if k < 1 {
		k = DefaultK
	}
	protein = strings.ToUpper(protein)
	s := &Set{protein: protein, k: k, hashes: make(map[uint64]struct{}, max(len(protein)-k+1, 0))}
	for i := 0; i+k <= len(protein); i++ {
		s.hashes[xxhash.Sum64String(protein[i:i+k])] = struct{}{}
	}
	return s
}

// Protein returns the source protein (upper-cased).
func (s *Set) Protein() string { return s.protein }

// K returns the k-mer length.
func (s *Set) K() int { return s.k }

// Size returns the number of distinct k-mers.
func (s *Set) Size() int { return len(s.hashes) }

// Similarity returns the number of k-mers shared with other.
func (s *Set) Similarity(other *Set) int {
	small, big := s.hashes, other.hashes
	if len(small) > len(big) {
		small, big = big, small
	}
	n := 0
	for h := range small {
		if _, ok := big[h]; ok {
			n++
		}
	}
	return n
}

// Distance returns the Jaccard distance in [0,1]; 1.0 when both sets are empty.
func (s *Set) Distance(other *Set) float64 {
	return DistanceFor(s.Similarity(other), s.Size(), other.Size())
}

// DistanceFor computes the Jaccard distance from a shared count and two set sizes.
func DistanceFor(similarity, sizeA, sizeB int) float64 {
	union := sizeA + sizeB - similarity
	if union <= 0 {
		return 1.0
	}
	return 1.0 - float64(similarity)/float64(union)
}
