package models

import "time"

type NotificationType string

const (
	NotifyGoalCreated   NotificationType = "goal_created"
	NotifyGoalCompleted NotificationType = "goal_completed"
	NotifyTaskDueSoon   NotificationType = "task_due_soon"
	NotifyTaskOverdue   NotificationType = "task_overdue"
	NotifyTaskCompleted NotificationType = "task_completed"
	NotifyEventStarting NotificationType = "event_starting"
	NotifyDailyReminder NotificationType = "daily_reminder"
	NotifyWelcome       NotificationType = "welcome"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifyGoalCreated, NotifyGoalCompleted, NotifyTaskDueSoon, NotifyTaskOverdue,
		NotifyTaskCompleted, NotifyEventStarting, NotifyDailyReminder, NotifyWelcome:
		return true
	}
	return false
}

type Notification struct {
	ID          string           `json:"id"`
	OwnerID     string           `json:"userId"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Read        bool             `json:"read"`
	RelatedID   string           `json:"relatedId,omitempty"`
	RelatedType string           `json:"relatedType,omitempty"` // goal, task, event
	CreatedAt   *time.Time       `json:"createdAt"`
	ReadAt      *time.Time       `json:"readAt"`
}
