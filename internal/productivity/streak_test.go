package productivity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arnold/goalforge-api/internal/models"
)

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestComputeStreak(t *testing.T) {
	tests := []struct {
		name        string
		completions []time.Time
		ref         time.Time
		want        int
	}{
		{
			name: "no completions",
			ref:  day(2024, 1, 3, 12),
			want: 0,
		},
		{
			name:        "three consecutive days ending today",
			completions: []time.Time{day(2024, 1, 1, 9), day(2024, 1, 2, 9), day(2024, 1, 3, 9)},
			ref:         day(2024, 1, 3, 23),
			want:        3,
		},
		{
			name:        "gap breaks the chain",
			completions: []time.Time{day(2024, 1, 1, 9), day(2024, 1, 3, 9)},
			ref:         day(2024, 1, 3, 12),
			want:        1,
		},
		{
			name:        "last completion older than yesterday",
			completions: []time.Time{day(2024, 1, 1, 9)},
			ref:         day(2024, 1, 5, 12),
			want:        0,
		},
		{
			name:        "chain ending yesterday still counts",
			completions: []time.Time{day(2024, 1, 1, 9), day(2024, 1, 2, 20)},
			ref:         day(2024, 1, 3, 8),
			want:        2,
		},
		{
			name:        "several completions on one day count once",
			completions: []time.Time{day(2024, 1, 3, 1), day(2024, 1, 3, 5), day(2024, 1, 3, 22), day(2024, 1, 2, 7)},
			ref:         day(2024, 1, 3, 23),
			want:        2,
		},
		{
			name:        "input order does not matter",
			completions: []time.Time{day(2024, 1, 3, 9), day(2024, 1, 1, 9), day(2024, 1, 2, 9)},
			ref:         day(2024, 1, 3, 10),
			want:        3,
		},
		{
			name:        "chain across a month boundary",
			completions: []time.Time{day(2024, 2, 28, 9), day(2024, 2, 29, 9), day(2024, 3, 1, 9)},
			ref:         day(2024, 3, 1, 18),
			want:        3,
		},
		{
			name:        "zero instants are ignored",
			completions: []time.Time{{}, day(2024, 1, 3, 9)},
			ref:         day(2024, 1, 3, 10),
			want:        1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStreak(tt.completions, tt.ref)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
		})
	}
}

func TestComputeStreakUsesReferenceLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2024-01-02T20:00Z is already 2024-01-03 in UTC+10.
	completions := []time.Time{time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)}
	ref := time.Date(2024, 1, 4, 9, 0, 0, 0, loc)

	assert.Equal(t, 1, ComputeStreak(completions, ref))
}

func TestCompletionInstants(t *testing.T) {
	at := day(2024, 1, 2, 9)
	tasks := []models.Task{
		{Status: models.TaskDone, UpdatedAt: &at},
		{Status: models.TaskTodo, UpdatedAt: &at},
		{Status: models.TaskDone},
	}

	assert.Equal(t, []time.Time{at}, CompletionInstants(tasks))
}
