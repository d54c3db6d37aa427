package models

import "time"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	return s == TaskTodo || s == TaskInProgress || s == TaskDone
}

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"userId"`
	GoalID      string     `json:"goalId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	Subtasks    []Subtask  `json:"subtasks"`
	Tags        []string   `json:"tags"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type CreateTaskRequest struct {
	GoalID      string    `json:"goalId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     *string   `json:"dueDate"`
	Priority    Priority  `json:"priority"`
	Subtasks    []Subtask `json:"subtasks"`
	Tags        []string  `json:"tags"`
}

type UpdateTaskRequest struct {
	GoalID      *string     `json:"goalId"`
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	DueDate     *string     `json:"dueDate"`
	Status      *TaskStatus `json:"status"`
	Priority    *Priority   `json:"priority"`
	Tags        []string    `json:"tags"`
}

func (t Task) ScheduledAt() *time.Time { return t.DueDate }
func (t Task) StatusName() string      { return string(t.Status) }
