package models

import "time"

// Task event actions.
const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionCompleted = "completed"
	ActionReopened  = "reopened"
	ActionDeleted   = "deleted"
)

// TaskEvent is the message payload for Kafka (one per successful write).
type TaskEvent struct {
	Action     string    `json:"action"`
	ID         string    `json:"id"`
	Task       *Task     `json:"task,omitempty"` // nil for deletes
	OccurredAt time.Time `json:"occurred_at"`
}
