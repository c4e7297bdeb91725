package models

import (
	"database/sql"
	"time"
)

// Task represents a task record.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Field returns the stringified value of a field by its JSON name.
// Used by store filters; ok is false for unknown fields.
func (t Task) Field(name string) (string, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "title":
		return t.Title, true
	case "description":
		return t.Description, true
	case "created_at":
		return t.CreatedAt.Format(time.RFC3339Nano), true
	case "updated_at":
		return t.UpdatedAt.Format(time.RFC3339Nano), true
	case "completed_at":
		if t.CompletedAt == nil {
			return "", true
		}
		return t.CompletedAt.Format(time.RFC3339Nano), true
	}
	return "", false
}

// Completed reports whether the task has a completion time.
func (t Task) Completed() bool {
	return t.CompletedAt != nil
}

// TaskPatch is a partial update. Nil fields are left untouched.
// CompletedAt with Valid=false clears the completion time.
type TaskPatch struct {
	Title       *string
	Description *string
	CompletedAt *sql.NullTime
	UpdatedAt   *time.Time
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.CompletedAt == nil && p.UpdatedAt == nil
}

// Apply merges the set fields of p into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.CompletedAt != nil {
		if p.CompletedAt.Valid {
			at := p.CompletedAt.Time
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
}
