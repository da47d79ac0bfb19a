package match

// Result is the outcome of a nearest-representative lookup.
type Result struct {
	repID      string
	repName    string
	similarity int
	distance   float64
	passes     bool
}

// New creates a match result.
func New(repID, repName string, similarity int, distance float64, passes bool) Result {
	return Result{repID: repID, repName: repName, similarity: similarity, distance: distance, passes: passes}
}

// None is the result returned when the reference set is empty.
func None() Result {
	return Result{distance: 1.0}
}

// RepID returns the representative genome ID; empty when nothing matched.
func (r Result) RepID() string { return r.repID }

// RepName returns the representative genome name.
func (r Result) RepName() string { return r.repName }

// Similarity returns the number of shared seed-protein k-mers.
func (r Result) Similarity() int { return r.similarity }

// Distance returns the k-mer distance in [0,1].
func (r Result) Distance() float64 { return r.distance }

// Passes reports whether the similarity clears the database threshold.
func (r Result) Passes() bool { return r.passes }

// Found reports whether any representative was returned.
func (r Result) Found() bool { return r.repID != "" }
