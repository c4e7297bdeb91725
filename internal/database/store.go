package database

import (
	"context"
	"errors"

	"task-tracker/internal/models"
)

// TasksTable is the table holding task records.
const TasksTable = "tasks"

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrUnknownField = errors.New("unknown filter field")
)

// Filter maps field names to case-insensitive substring patterns.
// A record matches when every field matches.
type Filter map[string]string

// Store is the task data store. Update and Delete report whether a record
// with the given id existed; callers check that before presuming success.
type Store interface {
	Insert(ctx context.Context, table string, task models.Task) error
	Select(ctx context.Context, table string, filter Filter) ([]models.Task, error)
	Update(ctx context.Context, table, id string, patch models.TaskPatch) (bool, error)
	Delete(ctx context.Context, table, id string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
