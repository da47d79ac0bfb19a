// Package quality classifies genomes by their quality metadata.
package quality

// Metadata keys shared by GTO quality bags and evaluation-report rows.
const (
	KeyGood            = "is_good"
	KeyMostlyGood      = "mostly_good"
	KeyHasSeed         = "has_seed"
	KeyCompleteness    = "completeness"
	KeyContamination   = "contamination"
	KeyFineConsistency = "fine_consistency"
	KeyHypothetical    = "hypothetical_rate"
)

// Thresholds for MostlyGoodButFailingSSU.
const (
	MinCompleteness    = 90.0
	MaxContamination   = 10.0
	MinFineConsistency = 80.0
	MaxHypothetical    = 30.0
)

// Metrics is a read-only quality-metadata bag.
// The second result of each accessor reports whether the value was present and readable.
type Metrics interface {
	Bool(key string) (bool, bool)
	Float(key string) (float64, bool)
}

// Reason explains a classification outcome.
type Reason string

const (
	// OK means the genome is acceptable.
	OK Reason = "ok"
	// AlreadyGood means the genome is already flagged fully good.
	AlreadyGood Reason = "good"
	// NotMostlyGood means the mostly-good flag is false.
	NotMostlyGood Reason = "not_mostly_good"
	// NoSeed means the genome lacks a usable seed protein.
	NoSeed Reason = "no_seed"
	// Thresholds means a numeric check failed.
	Thresholds Reason = "thresholds"
	// Missing means a required field was absent or unreadable.
	Missing Reason = "missing"
)

// StrictGood reports whether the pre-computed mostly-good flag is true.
func StrictGood(m Metrics) bool {
	return ClassifyStrictGood(m) == OK
}

// ClassifyStrictGood is StrictGood with a reason.
func ClassifyStrictGood(m Metrics) Reason {
	v, ok := m.Bool(KeyMostlyGood)
	switch {
	case !ok:
		return Missing
	case !v:
		return NotMostlyGood
	default:
		return OK
	}
}

// MostlyGoodButFailingSSU reports whether a genome would be good if it had a
// quality SSU rRNA: not already good, has a seed protein, and passes the
// completeness, contamination, consistency and hypothetical checks.
func MostlyGoodButFailingSSU(m Metrics) bool {
	return ClassifyMostlyGoodButFailingSSU(m) == OK
}

// ClassifyMostlyGoodButFailingSSU is MostlyGoodButFailingSSU with a reason.
func ClassifyMostlyGoodButFailingSSU(m Metrics) Reason {
	good, ok := m.Bool(KeyGood)
	if !ok {
		return Missing
	}
	if good {
		return AlreadyGood
	}
	seed, ok := m.Bool(KeyHasSeed)
	if !ok {
		return Missing
	}
	if !seed {
		return NoSeed
	}

	completeness, ok1 := m.Float(KeyCompleteness)
	contamination, ok2 := m.Float(KeyContamination)
	consistency, ok3 := m.Float(KeyFineConsistency)
	hypothetical, ok4 := m.Float(KeyHypothetical)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Missing
	}
	if completeness < MinCompleteness || contamination > MaxContamination ||
		consistency < MinFineConsistency || hypothetical > MaxHypothetical {
		return Thresholds
	}
	return OK
}
