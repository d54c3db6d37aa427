package productivity

import (
	"time"

	"github.com/arnold/goalforge-api/internal/models"
)

type Summary struct {
	TotalGoals     int     `json:"totalGoals"`
	ActiveGoals    int     `json:"activeGoals"`
	CompletedGoals int     `json:"completedGoals"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	TasksDueToday  int     `json:"tasksDueToday"`
	OverdueTasks   int     `json:"overdueTasks"`
	TodayEvents    int     `json:"todayEvents"`
	CompletionRate float64 `json:"completionRate"`
	Streak         int     `json:"streak"`
}

// Aggregate tallies the dashboard counters relative to ref.
func Aggregate(goals []models.Goal, tasks []models.Task, events []models.Event, ref time.Time) Summary {
	s := Summary{
		TotalGoals: len(goals),
		TotalTasks: len(tasks),
	}
	for _, g := range goals {
		switch g.Status {
		case models.GoalActive:
			s.ActiveGoals++
		case models.GoalCompleted:
			s.CompletedGoals++
		}
	}
	for _, t := range tasks {
		if t.Status == models.TaskDone {
			s.CompletedTasks++
		}
	}
	if s.TotalTasks > 0 {
		s.CompletionRate = float64(s.CompletedTasks) / float64(s.TotalTasks)
	}

	today := TodayWindow(ref)
	done := string(models.TaskDone)
	s.TasksDueToday = len(SelectInWindow(tasks, today, done))
	s.OverdueTasks = len(SelectInWindow(tasks, OverdueWindow(ref), done))
	s.TodayEvents = len(SelectInWindow(events, today))
	s.Streak = ComputeStreak(CompletionInstants(tasks), ref)
	return s
}
