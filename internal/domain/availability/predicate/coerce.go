// Package predicate implements the seven temporal predicate evaluators the
// engine applies against a rule's config and a subject-local moment.
package predicate

import "strconv"

// asFloat coerces v to a float64. Accepts float64, float32, the integer
// kinds (as produced by different JSON/YAML decoders), and numeric
// strings. Returns (0, false) for anything else.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asInt coerces v to an int via asFloat, truncating any fractional part.
func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// asIntSet extracts a []any from config[key], coerces each element to int,
// drops non-numeric entries, and collapses duplicates into a set.
func asIntSet(config map[string]any, key string) map[int]struct{} {
	return asIntSetRange(config, key, minInt, maxInt)
}

const (
	minInt = -1 << 62
	maxInt = 1 << 62
)

// asIntSetRange is asIntSet additionally dropping entries outside [lo, hi].
func asIntSetRange(config map[string]any, key string, lo, hi int) map[int]struct{} {
	out := make(map[int]struct{})
	raw, ok := config[key]
	if !ok {
		return out
	}
	items, ok := raw.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		n, ok := asInt(item)
		if !ok {
			continue
		}
		if n < lo || n > hi {
			continue
		}
		out[n] = struct{}{}
	}
	return out
}

// asStringSlice extracts a []string from config[key], accepting []any with
// string elements or a native []string. Non-string / non-slice values
// yield an empty slice.
func asStringSlice(config map[string]any, key string) []string {
	raw, ok := config[key]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// asString extracts a string from config[key]; returns ("", false) when
// absent or not a string.
func asString(config map[string]any, key string) (string, bool) {
	raw, ok := config[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}
