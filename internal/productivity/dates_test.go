package productivity

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/goalforge-api/internal/models"
)

func TestParseInstant(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	want := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  time.Time
	}{
		{"time value", want, want},
		{"rfc3339", "2024-05-01T09:30:00Z", want},
		{"rfc3339 with fraction", "2024-05-01T04:30:00.000-05:00", want},
		{"datetime-local", "2024-05-01T04:30", want},
		{"date only", "2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, loc)},
		{"unix millis", float64(want.UnixMilli()), want},
		{"json number", json.Number("1714555800000"), want},
		{"firestore timestamp", map[string]any{"_seconds": float64(want.Unix()), "_nanoseconds": float64(0)}, want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant("dueDate", tt.value, loc)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseInstantAbsent(t *testing.T) {
	for _, v := range []any{nil, "", "   ", time.Time{}, (*time.Time)(nil)} {
		got, err := ParseInstant("dueDate", v, time.UTC)
		assert.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestParseInstantMalformed(t *testing.T) {
	for _, v := range []any{
		"yesterday", true, map[string]any{"when": 1}, []any{},
		math.NaN(), math.Inf(1), math.Inf(-1), 1e20, -1e20, json.Number("1e30"),
		map[string]any{"seconds": math.NaN()},
		map[string]any{"seconds": 1e300},
	} {
		_, err := ParseInstant("start", v, time.UTC)
		var perr *DateParseError
		require.True(t, errors.As(err, &perr), "value %v", v)
		assert.Equal(t, "start", perr.Field)
	}
}

func TestNormalizeDropsNonFiniteDates(t *testing.T) {
	n, logs := newTestNormalizer()
	task, err := n.Task(models.Record{ID: "t1", OwnerID: "u1", Fields: map[string]any{"title": "x", "dueDate": math.Inf(1)}})
	require.NoError(t, err)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, 1, logs.Len())
}
