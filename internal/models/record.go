package models

// Record is a raw stored document as handed out by a store backend: the
// document ID, the owner it lives under and its untyped fields.
type Record struct {
	ID      string
	OwnerID string
	Fields  map[string]any
}

// Kind names a per-owner collection.
type Kind string

const (
	KindGoals         Kind = "goals"
	KindTasks         Kind = "tasks"
	KindEvents        Kind = "events"
	KindNotifications Kind = "notifications"
)

func (k Kind) Valid() bool {
	return k == KindGoals || k == KindTasks || k == KindEvents || k == KindNotifications
}
