package genome

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Quality is the quality-metadata bag of a genome (key -> boolean or numeric).
type Quality map[string]any

// Bool returns a flag value. The second result is false when the key is absent
// or the value cannot be read as a flag.
func (q Quality) Bool(key string) (bool, bool) {
	v, ok := q[key]
	if !ok {
		return false, false
	}
	switch x := v.(type) {
	case bool:
		return x, true
	case float64:
		return x != 0, true
	case int:
		return x != 0, true
	case string:
		return ParseFlag(x)
	default:
		return false, false
	}
}

// Float returns a numeric value. The second result is false when the key is
// absent or not numeric.
func (q Quality) Float(key string) (float64, bool) {
	v, ok := q[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ParseFlag reads the flag spellings used in evaluation tables and GTO files.
// A blank value is not a flag.
func ParseFlag(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "yes", "t", "true":
		return true, true
	case "0", "n", "no", "f", "false":
		return false, true
	default:
		return false, false
	}
}
