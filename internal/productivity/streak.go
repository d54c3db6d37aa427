package productivity

import (
	"slices"
	"time"

	"github.com/arnold/goalforge-api/internal/models"
)

// ComputeStreak counts consecutive calendar days with at least one
// completion, ending at the most recent one. The chain only counts when the
// latest completion falls on ref's day or the day before.
func ComputeStreak(completions []time.Time, ref time.Time) int {
	loc := ref.Location()
	seen := make(map[int64]struct{}, len(completions))
	days := make([]int64, 0, len(completions))
	for _, c := range completions {
		if c.IsZero() {
			continue
		}
		d := dayNumber(c, loc)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0
	}
	slices.Sort(days)
	slices.Reverse(days)

	today := dayNumber(ref, loc)
	if days[0] != today && days[0] != today-1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] != 1 {
			break
		}
		streak++
	}
	return streak
}

// CompletionInstants is the completion history of a task list: the last
// update of every finished task.
func CompletionInstants(tasks []models.Task) []time.Time {
	out := make([]time.Time, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == models.TaskDone && t.UpdatedAt != nil {
			out = append(out, *t.UpdatedAt)
		}
	}
	return out
}
