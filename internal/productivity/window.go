package productivity

import (
	"slices"
	"time"
)

// Schedulable is an entity with one relevant date and an optional status.
type Schedulable interface {
	ScheduledAt() *time.Time
	StatusName() string
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// TodayWindow spans ref's local calendar day.
func TodayWindow(ref time.Time) Window {
	start := StartOfDay(ref)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// OverdueWindow holds everything strictly before ref.
func OverdueWindow(ref time.Time) Window {
	return Window{End: ref}
}

// NextWindow is [ref, ref+d).
func NextWindow(ref time.Time, d time.Duration) Window {
	return Window{Start: ref, End: ref.Add(d)}
}

// DayRange covers the calendar days from through to, both inclusive.
func DayRange(from, to time.Time) Window {
	return Window{Start: StartOfDay(from), End: StartOfDay(to).AddDate(0, 0, 1)}
}

// SelectInWindow returns, in input order, the items dated inside w whose
// status is not excluded. Undated items never match.
func SelectInWindow[T Schedulable](items []T, w Window, exclude ...string) []T {
	out := make([]T, 0)
	for _, item := range items {
		at := item.ScheduledAt()
		if at == nil || !w.Contains(*at) {
			continue
		}
		if slices.Contains(exclude, item.StatusName()) {
			continue
		}
		out = append(out, item)
	}
	return out
}
