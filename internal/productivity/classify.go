package productivity

import (
	"time"

	"github.com/arnold/goalforge-api/internal/models"
)

type DeadlineKind string

const (
	Overdue DeadlineKind = "OVERDUE"
	DueSoon DeadlineKind = "DUE_SOON"
)

// DueSoonHorizon is how far ahead a deadline counts as imminent.
const DueSoonHorizon = 24 * time.Hour

func (k DeadlineKind) NotificationType() models.NotificationType {
	if k == Overdue {
		return models.NotifyTaskOverdue
	}
	return models.NotifyTaskDueSoon
}

type Deadline struct {
	Task models.Task
	Kind DeadlineKind
}

// ClassifyDeadlines picks the unfinished tasks that are overdue or due within
// DueSoonHorizon of ref. It keeps no state, so repeated calls with the same
// input return the same result.
func ClassifyDeadlines(tasks []models.Task, ref time.Time) []Deadline {
	out := make([]Deadline, 0)
	horizon := ref.Add(DueSoonHorizon)
	for _, t := range tasks {
		if t.Status == models.TaskDone || t.DueDate == nil {
			continue
		}
		switch due := *t.DueDate; {
		case due.Before(ref):
			out = append(out, Deadline{Task: t, Kind: Overdue})
		case due.Before(horizon):
			out = append(out, Deadline{Task: t, Kind: DueSoon})
		}
	}
	return out
}
