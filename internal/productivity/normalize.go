package productivity

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arnold/goalforge-api/internal/models"
)

// Normalizer turns raw stored records into canonical entities. Date strings
// without an explicit offset are read in its location.
type Normalizer struct {
	loc *time.Location
	log *zap.Logger
}

func NewNormalizer(loc *time.Location, log *zap.Logger) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{loc: loc, log: log.With(zap.String("component", "normalizer"))}
}

// Location is the zone used for offset-less dates and calendar arithmetic.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

func (n *Normalizer) Goal(rec models.Record) (models.Goal, error) {
	f := fields(rec)
	owner, title, err := required("goal", rec, f)
	if err != nil {
		return models.Goal{}, err
	}

	category := models.GoalCategory(str(f, "category"))
	if category == "" {
		category = models.CategoryPersonal
	}
	if !category.Valid() {
		return models.Goal{}, &ValidationError{Kind: "goal", Field: "category", Reason: fmt.Sprintf("has unknown value %q", category)}
	}
	priority, err := priorityOf("goal", f)
	if err != nil {
		return models.Goal{}, err
	}
	status := models.GoalStatus(str(f, "status"))
	if status == "" {
		status = models.GoalActive
	}
	if !status.Valid() {
		return models.Goal{}, &ValidationError{Kind: "goal", Field: "status", Reason: fmt.Sprintf("has unknown value %q", status)}
	}

	return models.Goal{
		ID:          rec.ID,
		OwnerID:     owner,
		Title:       title,
		Description: str(f, "description"),
		Category:    category,
		Deadline:    n.date(rec.ID, "deadline", f),
		Progress:    percent(f["progress"]),
		Priority:    priority,
		Tags:        strSlice(f["tags"]),
		Status:      status,
		CreatedAt:   n.date(rec.ID, "createdAt", f),
		UpdatedAt:   n.date(rec.ID, "updatedAt", f),
	}, nil
}

func (n *Normalizer) Task(rec models.Record) (models.Task, error) {
	f := fields(rec)
	owner, title, err := required("task", rec, f)
	if err != nil {
		return models.Task{}, err
	}

	priority, err := priorityOf("task", f)
	if err != nil {
		return models.Task{}, err
	}
	status := models.TaskStatus(str(f, "status"))
	if status == "" {
		status = models.TaskTodo
	}
	if !status.Valid() {
		return models.Task{}, &ValidationError{Kind: "task", Field: "status", Reason: fmt.Sprintf("has unknown value %q", status)}
	}

	return models.Task{
		ID:          rec.ID,
		OwnerID:     owner,
		GoalID:      str(f, "goalId"),
		Title:       title,
		Description: str(f, "description"),
		DueDate:     n.date(rec.ID, "dueDate", f),
		Status:      status,
		Priority:    priority,
		Subtasks:    subtasks(f["subtasks"]),
		Tags:        strSlice(f["tags"]),
		CreatedAt:   n.date(rec.ID, "createdAt", f),
		UpdatedAt:   n.date(rec.ID, "updatedAt", f),
	}, nil
}

func (n *Normalizer) Event(rec models.Record) (models.Event, error) {
	f := fields(rec)
	owner, title, err := required("event", rec, f)
	if err != nil {
		return models.Event{}, err
	}

	typ := models.EventType(str(f, "type"))
	if typ == "" {
		typ = models.EventTypeEvent
	}
	if !typ.Valid() {
		return models.Event{}, &ValidationError{Kind: "event", Field: "type", Reason: fmt.Sprintf("has unknown value %q", typ)}
	}
	color := str(f, "color")
	if color == "" {
		color = models.ColorEvent
	}

	start := n.date(rec.ID, "start", f)
	end := n.date(rec.ID, "end", f)
	if start != nil && end != nil && end.Before(*start) {
		return models.Event{}, &ValidationError{Kind: "event", Field: "end", Reason: "is before start"}
	}
	if end == nil {
		end = start
	}

	return models.Event{
		ID:          rec.ID,
		OwnerID:     owner,
		Title:       title,
		Description: str(f, "description"),
		Start:       start,
		End:         end,
		AllDay:      boolean(f["allDay"]),
		Color:       color,
		Type:        typ,
		RelatedID:   str(f, "relatedId"),
		CreatedAt:   n.date(rec.ID, "createdAt", f),
		UpdatedAt:   n.date(rec.ID, "updatedAt", f),
	}, nil
}

func (n *Normalizer) Notification(rec models.Record) (models.Notification, error) {
	f := fields(rec)
	owner, title, err := required("notification", rec, f)
	if err != nil {
		return models.Notification{}, err
	}
	typ := models.NotificationType(str(f, "type"))
	if !typ.Valid() {
		return models.Notification{}, &ValidationError{Kind: "notification", Field: "type", Reason: fmt.Sprintf("has unknown value %q", typ)}
	}

	return models.Notification{
		ID:          rec.ID,
		OwnerID:     owner,
		Type:        typ,
		Title:       title,
		Message:     str(f, "message"),
		Read:        boolean(f["read"]),
		RelatedID:   str(f, "relatedId"),
		RelatedType: str(f, "relatedType"),
		CreatedAt:   n.date(rec.ID, "createdAt", f),
		ReadAt:      n.date(rec.ID, "readAt", f),
	}, nil
}

// Goals normalizes a batch, dropping invalid records. Order is preserved.
func (n *Normalizer) Goals(recs []models.Record) []models.Goal {
	return batch(n, recs, n.Goal)
}

func (n *Normalizer) Tasks(recs []models.Record) []models.Task {
	return batch(n, recs, n.Task)
}

func (n *Normalizer) Events(recs []models.Record) []models.Event {
	return batch(n, recs, n.Event)
}

func (n *Normalizer) Notifications(recs []models.Record) []models.Notification {
	return batch(n, recs, n.Notification)
}

func batch[T any](n *Normalizer, recs []models.Record, fn func(models.Record) (T, error)) []T {
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		v, err := fn(rec)
		if err != nil {
			n.log.Warn("skipping invalid record", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

// date reads an optional date field. Malformed values are logged and
// treated as absent.
func (n *Normalizer) date(id, key string, f map[string]any) *time.Time {
	t, err := ParseInstant(key, f[key], n.loc)
	if err != nil {
		var perr *DateParseError
		if errors.As(err, &perr) {
			n.log.Warn("dropping malformed date", zap.String("id", id), zap.String("field", key), zap.Any("value", perr.Value))
		}
		return nil
	}
	return t
}

func fields(rec models.Record) map[string]any {
	if rec.Fields == nil {
		return map[string]any{}
	}
	return rec.Fields
}

func ownerOf(rec models.Record, f map[string]any) string {
	if owner := strings.TrimSpace(rec.OwnerID); owner != "" {
		return owner
	}
	return strings.TrimSpace(str(f, "userId"))
}

func required(kind string, rec models.Record, f map[string]any) (string, string, error) {
	owner := ownerOf(rec, f)
	if owner == "" {
		return "", "", &ValidationError{Kind: kind, Field: "userId", Reason: "is required"}
	}
	title := strings.TrimSpace(str(f, "title"))
	if title == "" {
		return "", "", &ValidationError{Kind: kind, Field: "title", Reason: "is required"}
	}
	return owner, title, nil
}

func priorityOf(kind string, f map[string]any) (models.Priority, error) {
	p := models.Priority(str(f, "priority"))
	if p == "" {
		return models.PriorityMedium, nil
	}
	if !p.Valid() {
		return "", &ValidationError{Kind: kind, Field: "priority", Reason: fmt.Sprintf("has unknown value %q", p)}
	}
	return p, nil
}

func str(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return ""
}

func strSlice(v any) []string {
	out := []string{}
	switch vals := v.(type) {
	case []string:
		out = append(out, vals...)
	case []any:
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// percent reads a stored progress value clamped to [0,100]. Floats are
// clamped before conversion since int() of an out-of-range float is undefined.
func percent(v any) int {
	switch n := v.(type) {
	case int:
		return models.ClampProgress(n)
	case int64:
		return clampFloat(float64(n))
	case float64:
		return clampFloat(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return clampFloat(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0
		}
		return clampFloat(f)
	}
	return 0
}

func clampFloat(f float64) int {
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= 100:
		return 100
	}
	return int(f)
}

func boolean(v any) bool {
	b, _ := v.(bool)
	return b
}

func subtasks(v any) []models.Subtask {
	out := []models.Subtask{}
	switch items := v.(type) {
	case []models.Subtask:
		out = append(out, items...)
	case []map[string]any:
		for _, m := range items {
			out = append(out, subtaskOf(m))
		}
	case []any:
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				out = append(out, subtaskOf(m))
			}
		}
	}
	return out
}

func subtaskOf(m map[string]any) models.Subtask {
	return models.Subtask{
		ID:        str(m, "id"),
		Title:     str(m, "title"),
		Completed: boolean(m["completed"]),
	}
}
