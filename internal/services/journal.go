package services

import (
	"context"
	"sort"
	"time"

	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/session"
)

const (
	journalGoals = 60
	journalTasks = 100
)

// JournalEntry is one item of the completion timeline.
type JournalEntry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // goal_completed, task_completed, milestone_reached
	Title     string    `json:"title"`
	GoalID    string    `json:"goalId,omitempty"`
	GoalTitle string    `json:"goalTitle,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Journal returns what the owner has finished, newest first: completed goals,
// done tasks and, for tasks still open, completed subtasks. Items without an
// update time are left out since they cannot be placed on the timeline.
func (p *Planner) Journal(ctx context.Context, sess session.Session) ([]JournalEntry, error) {
	goals, err := p.ListGoals(ctx, sess, GoalFilter{})
	if err != nil {
		return nil, err
	}
	tasks, err := p.ListTasks(ctx, sess, TaskFilter{})
	if err != nil {
		return nil, err
	}

	goalTitle := make(map[string]string, len(goals))
	for _, g := range goals {
		goalTitle[g.ID] = g.Title
	}

	entries := make([]JournalEntry, 0)

	count := 0
	for _, g := range goals {
		if g.Status != models.GoalCompleted || g.UpdatedAt == nil || count == journalGoals {
			continue
		}
		entries = append(entries, JournalEntry{
			ID:        "goal_" + g.ID,
			Type:      "goal_completed",
			Title:     g.Title,
			GoalID:    g.ID,
			GoalTitle: g.Title,
			Timestamp: *g.UpdatedAt,
		})
		count++
	}

	count = 0
	for _, t := range tasks {
		if t.UpdatedAt == nil || count == journalTasks {
			continue
		}
		if t.Status == models.TaskDone {
			entries = append(entries, JournalEntry{
				ID:        "task_" + t.ID,
				Type:      "task_completed",
				Title:     t.Title,
				GoalID:    t.GoalID,
				GoalTitle: goalTitle[t.GoalID],
				Timestamp: *t.UpdatedAt,
			})
			count++
			continue
		}
		for _, st := range t.Subtasks {
			if !st.Completed {
				continue
			}
			entries = append(entries, JournalEntry{
				ID:        "subtask_" + st.ID,
				Type:      "milestone_reached",
				Title:     st.Title,
				GoalID:    t.GoalID,
				GoalTitle: goalTitle[t.GoalID],
				Timestamp: *t.UpdatedAt,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}
