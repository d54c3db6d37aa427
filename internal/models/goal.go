package models

import "time"

type GoalCategory string

const (
	CategoryPersonal  GoalCategory = "personal"
	CategoryWork      GoalCategory = "work"
	CategoryHealth    GoalCategory = "health"
	CategoryFinance   GoalCategory = "finance"
	CategoryEducation GoalCategory = "education"
	CategoryStudy     GoalCategory = "study"
	CategoryFitness   GoalCategory = "fitness"
	CategoryHabit     GoalCategory = "habit"
	CategoryCareer    GoalCategory = "career"
	CategoryOther     GoalCategory = "other"
)

func (c GoalCategory) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategoryHealth, CategoryFinance, CategoryEducation,
		CategoryStudy, CategoryFitness, CategoryHabit, CategoryCareer, CategoryOther:
		return true
	}
	return false
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalArchived  GoalStatus = "archived"
)

func (s GoalStatus) Valid() bool {
	return s == GoalActive || s == GoalCompleted || s == GoalArchived
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Goal struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"userId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    GoalCategory `json:"category"`
	Deadline    *time.Time   `json:"deadline"`
	Progress    int          `json:"progress"`
	Priority    Priority     `json:"priority"`
	Tags        []string     `json:"tags"`
	Status      GoalStatus   `json:"status"`
	CreatedAt   *time.Time   `json:"createdAt"`
	UpdatedAt   *time.Time   `json:"updatedAt"`
}

// ClampProgress bounds a progress value to [0,100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

type CreateGoalRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Category    GoalCategory `json:"category"`
	Deadline    *string      `json:"deadline"`
	Progress    int          `json:"progress"`
	Priority    Priority     `json:"priority"`
	Tags        []string     `json:"tags"`
}

type UpdateGoalRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Category    *GoalCategory `json:"category"`
	Deadline    *string       `json:"deadline"`
	Progress    *int          `json:"progress"`
	Priority    *Priority     `json:"priority"`
	Tags        []string      `json:"tags"`
	Status      *GoalStatus   `json:"status"`
}

func (g Goal) ScheduledAt() *time.Time { return g.Deadline }
func (g Goal) StatusName() string      { return string(g.Status) }
