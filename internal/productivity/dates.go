package productivity

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseInstant decodes a stored date value. A nil value or blank string is
// absent and yields (nil, nil). Strings without an offset are read in loc.
func ParseInstant(field string, v any, loc *time.Location) (*time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	switch val := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if val.IsZero() {
			return nil, nil
		}
		return &val, nil
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil, nil
		}
		t := *val
		return &t, nil
	case string:
		return parseString(field, val, loc)
	case int:
		return fromMillis(int64(val)), nil
	case int64:
		return fromMillis(val), nil
	case float64:
		ms, ok := floatInt(val)
		if !ok {
			return nil, &DateParseError{Field: field, Value: v}
		}
		return fromMillis(ms), nil
	case json.Number:
		ms, ok := number(val)
		if !ok {
			return nil, &DateParseError{Field: field, Value: v}
		}
		return fromMillis(ms), nil
	case map[string]any:
		return parseTimestampObject(field, val)
	}
	return nil, &DateParseError{Field: field, Value: v}
}

func parseString(field, s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, &DateParseError{Field: field, Value: s}
}

func fromMillis(ms int64) *time.Time {
	t := time.UnixMilli(ms)
	return &t
}

// parseTimestampObject accepts the JSON shape of a Firestore timestamp.
func parseTimestampObject(field string, m map[string]any) (*time.Time, error) {
	secs, ok := number(m["seconds"])
	if !ok {
		secs, ok = number(m["_seconds"])
	}
	if !ok {
		return nil, &DateParseError{Field: field, Value: m}
	}
	nanos, ok := number(m["nanoseconds"])
	if !ok {
		nanos, _ = number(m["_nanoseconds"])
	}
	t := time.Unix(secs, nanos)
	return &t, nil
}

func number(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatInt(f)
	}
	return 0, false
}

// maxStoredNumber bounds numeric timestamps: ±2^53 is the exact integer range
// of a float64 and covers unix milliseconds far past year 9999.
const maxStoredNumber = 1 << 53

// floatInt converts a stored float, rejecting non-finite and out-of-range
// values whose int64 conversion is undefined.
func floatInt(f float64) (int64, bool) {
	if math.IsNaN(f) || f > maxStoredNumber || f < -maxStoredNumber {
		return 0, false
	}
	return int64(f), true
}

// dayNumber maps an instant to a count of calendar days in loc, so that
// adjacent local dates differ by exactly one regardless of DST.
func dayNumber(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
