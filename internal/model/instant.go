package model

import (
	"fmt"
	"math"
	"time"
)

// dateTag is the key of the tagged-date wrapper the remote store uses to
// disambiguate instants from plain strings, e.g. {"$date": "2025-01-01T00:00:00Z"}.
const dateTag = "$date"

// NormalizeInstant coerces an instant-valued field from a server document
// into the canonical textual form: RFC3339 in UTC.
//
// Accepted inputs:
//   - RFC3339 / RFC3339Nano strings
//   - tagged dates: map with a single "$date" string entry
//   - epoch milliseconds as float64 (JSON number) or int64
//   - time.Time
//
// Returns ("", false) when the value is absent or not coercible. Callers
// treat that as "no instant" rather than an error — server documents are
// loosely structured and a missing timestamp must not poison the whole
// mapped entity.
func NormalizeInstant(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		if err != nil {
			return "", false
		}
		return canonical(t), true
	case map[string]any:
		inner, ok := val[dateTag]
		if !ok {
			return "", false
		}
		return NormalizeInstant(inner)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "", false
		}
		return canonical(time.UnixMilli(int64(val))), true
	case int64:
		return canonical(time.UnixMilli(val)), true
	case time.Time:
		return canonical(val), true
	default:
		return "", false
	}
}

// ParseInstant validates a caller-supplied instant string and returns its
// canonical form. Unlike NormalizeInstant it is strict: caller input that
// doesn't parse is an error, not an absent value.
func ParseInstant(s string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return "", fmt.Errorf("invalid instant %q: %w", s, err)
	}
	return canonical(t), nil
}

// TaggedDate wraps a canonical instant string in the tagged-date structure
// expected by the remote store for instant-valued request parameters.
func TaggedDate(instant string) map[string]any {
	return map[string]any{dateTag: instant}
}

// Canonical returns the canonical textual form for a time value.
func Canonical(t time.Time) string {
	return canonical(t)
}

func canonical(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
