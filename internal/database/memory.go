package database

import (
	"context"
	"strings"
	"sync"

	"task-tracker/internal/models"
)

// Memory is an in-process Store. Records live until the process exits and
// are returned in insertion order.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]models.Task
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string][]models.Task)}
}

// Insert appends task to table, creating the table on first use.
func (m *Memory) Insert(_ context.Context, table string, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[table] = append(m.tables[table], task)
	return nil
}

// Select returns copies of the matching records. A nil filter selects all.
func (m *Memory) Select(_ context.Context, table string, filter Filter) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Task, 0, len(m.tables[table]))
	for _, t := range m.tables[table] {
		if matches(t, filter) {
			out = append(out, clone(t))
		}
	}
	return out, nil
}

// Update merges patch into the record with the given id. An empty patch only
// reports whether the record exists.
func (m *Memory) Update(_ context.Context, table, id string, patch models.TaskPatch) (bool, error) {
	if patch.Empty() {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.index(table, id) >= 0, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(table, id); i >= 0 {
		patch.Apply(&m.tables[table][i])
		return true, nil
	}
	return false, nil
}

// index returns the position of id in table, or -1. Callers hold mu.
func (m *Memory) index(table, id string) int {
	for i, t := range m.tables[table] {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Delete removes the record with the given id.
func (m *Memory) Delete(_ context.Context, table, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(table, id)
	if i < 0 {
		return false, nil
	}
	rows := m.tables[table]
	m.tables[table] = append(rows[:i:i], rows[i+1:]...)
	return true, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func matches(t models.Task, filter Filter) bool {
	for field, pattern := range filter {
		v, ok := t.Field(field)
		if !ok || !strings.Contains(strings.ToLower(v), strings.ToLower(pattern)) {
			return false
		}
	}
	return true
}

// clone detaches the completion time so callers cannot mutate stored state.
func clone(t models.Task) models.Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}
