package productivity

import "fmt"

// ValidationError reports a record that cannot be turned into an entity.
// It is returned to the caller and never retried.
type ValidationError struct {
	Kind   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Kind, e.Field, e.Reason)
}

// DateParseError reports a single malformed date value. The affected item is
// treated as undated; the surrounding batch continues.
type DateParseError struct {
	Field string
	Value any
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %v as a date", e.Field, e.Value)
}
