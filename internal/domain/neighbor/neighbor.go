// Package neighbor models precomputed representative neighborhoods and the
// round-robin allocation used to build balanced samples from them.
package neighbor

import (
	"cmp"
	"slices"
)

// Neighbor is a genome close to a representative, with its precomputed distance.
type Neighbor struct {
	ID       string
	Name     string
	Distance float64
}

// Compare orders neighbors by distance, then by ID.
func Compare(a, b Neighbor) int {
	if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Neighborhood maps a representative ID to its neighbors.
type Neighborhood map[string][]Neighbor

// Add appends a neighbor to a representative's list.
func (h Neighborhood) Add(repID string, n Neighbor) {
	h[repID] = append(h[repID], n)
}

// Sort orders every neighbor list by Compare.
func (h Neighborhood) Sort() {
	for _, list := range h {
		slices.SortFunc(list, Compare)
	}
}

// RepIDs returns the representative IDs in lexical order.
func (h Neighborhood) RepIDs() []string {
	ids := make([]string, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Size returns the total number of neighbors.
func (h Neighborhood) Size() int {
	n := 0
	for _, list := range h {
		n += len(list)
	}
	return n
}

// Allocate plans how many neighbors each representative contributes. Counts are
// raised by one per representative per round, in RepIDs order, until the total
// reaches minGenomes or every list is used up. A representative leaves the
// rotation once its count equals its list length.
func Allocate(h Neighborhood, minGenomes int) map[string]int {
	plan := make(map[string]int, len(h))
	active := make([]string, 0, len(h))
	for _, id := range h.RepIDs() {
		if len(h[id]) > 0 {
			active = append(active, id)
		}
	}

	total := 0
	for len(active) > 0 && total < minGenomes {
		next := make([]string, 0, len(active))
		for _, id := range active {
			if total >= minGenomes {
				break
			}
			plan[id]++
			total++
			if plan[id] < len(h[id]) {
				next = append(next, id)
			}
		}
		active = next
	}
	return plan
}
