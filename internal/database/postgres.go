package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"task-tracker/internal/models"
	"task-tracker/pkg/logger"
)

// filterColumns maps filter fields to the columns they may match on.
var filterColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"description": "description",
}

// Postgres is a Store on database/sql. Only the tasks table exists.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open pool whose schema has been migrated.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Insert(ctx context.Context, table string, task models.Task) error {
	if table != TasksTable {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, created_at, updated_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		task.ID, task.Title, task.Description, task.CreatedAt, task.UpdatedAt, task.CompletedAt)
	if err != nil {
		logger.Error(ctx, "Store Insert failed", "error", err, "id", task.ID)
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (p *Postgres) Select(ctx context.Context, table string, filter Filter) ([]models.Task, error) {
	if table != TasksTable {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	where, args, err := buildWhere(filter)
	if err != nil {
		return nil, err
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, title, description, created_at, updated_at, completed_at FROM tasks`+where+` ORDER BY seq`,
		args...)
	if err != nil {
		logger.Error(ctx, "Store Select failed", "error", err)
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		var completed sql.NullTime
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.CreatedAt, &t.UpdatedAt, &completed); err != nil {
			logger.Error(ctx, "Store scan task failed", "error", err)
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if completed.Valid {
			at := completed.Time
			t.CompletedAt = &at
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (p *Postgres) Update(ctx context.Context, table, id string, patch models.TaskPatch) (bool, error) {
	if table != TasksTable {
		return false, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	if patch.Empty() {
		var exists bool
		if err := p.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
			logger.Error(ctx, "Store Update lookup failed", "error", err, "id", id)
			return false, fmt.Errorf("update task: %w", err)
		}
		return exists, nil
	}
	setCompleted := patch.CompletedAt != nil
	var completedAt any
	if setCompleted && patch.CompletedAt.Valid {
		completedAt = patch.CompletedAt.Time
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE tasks SET
		   title = COALESCE($1, title),
		   description = COALESCE($2, description),
		   completed_at = CASE WHEN $3::boolean THEN $4::timestamptz ELSE completed_at END,
		   updated_at = COALESCE($5::timestamptz, updated_at)
		 WHERE id = $6`,
		patch.Title, patch.Description, setCompleted, completedAt, patch.UpdatedAt, id)
	if err != nil {
		logger.Error(ctx, "Store Update failed", "error", err, "id", id)
		return false, fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	return n > 0, nil
}

func (p *Postgres) Delete(ctx context.Context, table, id string) (bool, error) {
	if table != TasksTable {
		return false, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error(ctx, "Store Delete failed", "error", err, "id", id)
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return n > 0, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// buildWhere renders filter as an AND of ILIKE clauses. Fields are sorted so
// the generated SQL is stable.
func buildWhere(filter Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	clauses := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for i, f := range fields {
		col, ok := filterColumns[f]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
		clauses = append(clauses, fmt.Sprintf(`%s ILIKE '%%' || $%d || '%%' ESCAPE '\'`, col, i+1))
		args = append(args, escapeLike(filter[f]))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
