package models

import "time"

type EventType string

const (
	EventTypeEvent EventType = "event"
	EventTypeTask  EventType = "task"
	EventTypeGoal  EventType = "goal"
)

func (t EventType) Valid() bool {
	return t == EventTypeEvent || t == EventTypeTask || t == EventTypeGoal
}

// Calendar colors used by the web client.
const (
	ColorEvent = "#3b82f6"
	ColorTask  = "#f59e0b"
	ColorGoal  = "#8b5cf6"
)

type Event struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
	AllDay      bool       `json:"allDay"`
	Color       string     `json:"color"`
	Type        EventType  `json:"type"`
	RelatedID   string     `json:"relatedId,omitempty"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	AllDay      bool      `json:"allDay"`
	Color       string    `json:"color"`
	Type        EventType `json:"type"`
	RelatedID   string    `json:"relatedId"`
}

type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	AllDay      *bool   `json:"allDay"`
	Color       *string `json:"color"`
}

func (e Event) ScheduledAt() *time.Time { return e.Start }

// StatusName is empty: events carry no status.
func (e Event) StatusName() string { return "" }
