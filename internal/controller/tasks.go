package controller

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"task-tracker/internal/cache"
	"task-tracker/internal/database"
	"task-tracker/internal/models"
	"task-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Response messages. Error bodies are JSON strings, not objects.
const (
	MsgMissingTitle       = "Missing 'title' property in the request body."
	MsgMissingDescription = "Missing 'description' property in the request body."
	MsgMissingUpdate      = "Missing 'title' and 'description', should have at least one property in the request body."
	MsgInvalidJSON        = "Invalid JSON in the request body."
	MsgInternal           = "Internal server error."
)

// MsgNotFound returns the 404 body for id.
func MsgNotFound(id string) string {
	return fmt.Sprintf("Record with id '%s' not found.", id)
}

// ListCache caches serialized task lists per search term.
type ListCache interface {
	Get(ctx context.Context, search string) ([]byte, bool)
	Set(ctx context.Context, search string, b []byte)
	Invalidate(ctx context.Context)
}

// EventPublisher publishes task lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.TaskEvent) error
}

// TaskController serves the /tasks routes. cache and events are optional.
type TaskController struct {
	store  database.Store
	cache  ListCache
	events EventPublisher
	group  singleflight.Group
	now    func() time.Time
}

// NewTaskController returns a controller on store. Pass nil for cache or
// events to disable them.
func NewTaskController(store database.Store, cache ListCache, events EventPublisher) *TaskController {
	return &TaskController{
		store:  store,
		cache:  cache,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ListTasks returns every task, or those whose title and description both
// contain ?search (case-insensitive).
func (tc *TaskController) ListTasks(c *gin.Context) {
	ctx := c.Request.Context()
	search := c.Query("search")

	if tc.cache != nil {
		if b, ok := tc.cache.Get(ctx, search); ok {
			c.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var filter database.Filter
	if search != "" {
		filter = database.Filter{"title": search, "description": search}
	}
	v, err, _ := tc.group.Do(cache.Key(search), func() (any, error) {
		tasks, err := tc.store.Select(context.WithoutCancel(ctx), database.TasksTable, filter)
		if err != nil {
			return nil, err
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		return json.Marshal(tasks)
	})
	if err != nil {
		tc.internalError(c, "ListTasks select failed", err)
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	if tc.cache != nil {
		tc.cache.Set(ctx, search, b)
	}
}

// CreateTask validates the body and inserts a new task.
func (tc *TaskController) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()
	var body createTaskRequest
	if !bindBody(c, &body) {
		return
	}
	if body.Title == "" {
		c.JSON(http.StatusBadRequest, MsgMissingTitle)
		return
	}
	if body.Description == "" {
		c.JSON(http.StatusBadRequest, MsgMissingDescription)
		return
	}

	now := tc.now()
	task := models.Task{
		ID:          uuid.New().String(),
		Title:       body.Title,
		Description: body.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tc.store.Insert(ctx, database.TasksTable, task); err != nil {
		tc.internalError(c, "CreateTask insert failed", err)
		return
	}
	logger.Debug(ctx, "Task created", "id", task.ID)
	tc.afterWrite(ctx, models.ActionCreated, task.ID, &task)
	c.Status(http.StatusCreated)
}

// UpdateTask overwrites title and/or description. Empty values are ignored.
func (tc *TaskController) UpdateTask(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	var body updateTaskRequest
	if !bindBody(c, &body) {
		return
	}
	task, ok := tc.findTask(c, id)
	if !ok {
		return
	}
	if body.Title == "" && body.Description == "" {
		c.JSON(http.StatusBadRequest, MsgMissingUpdate)
		return
	}

	now := tc.now()
	patch := models.TaskPatch{UpdatedAt: &now}
	if body.Title != "" {
		patch.Title = &body.Title
	}
	if body.Description != "" {
		patch.Description = &body.Description
	}
	if !tc.update(c, id, patch) {
		return
	}
	patch.Apply(&task)
	tc.afterWrite(ctx, models.ActionUpdated, id, &task)
	c.Status(http.StatusNoContent)
}

// DeleteTask removes a task.
func (tc *TaskController) DeleteTask(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if _, ok := tc.findTask(c, id); !ok {
		return
	}
	deleted, err := tc.store.Delete(ctx, database.TasksTable, id)
	if err != nil {
		tc.internalError(c, "DeleteTask delete failed", err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, MsgNotFound(id))
		return
	}
	tc.afterWrite(ctx, models.ActionDeleted, id, nil)
	c.Status(http.StatusNoContent)
}

// ToggleComplete sets completed_at to now on an incomplete task and clears it
// on a completed one.
func (tc *TaskController) ToggleComplete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	task, ok := tc.findTask(c, id)
	if !ok {
		return
	}

	now := tc.now()
	patch := models.TaskPatch{UpdatedAt: &now}
	action := models.ActionCompleted
	if task.Completed() {
		patch.CompletedAt = &sql.NullTime{}
		action = models.ActionReopened
	} else {
		patch.CompletedAt = &sql.NullTime{Time: now, Valid: true}
	}
	if !tc.update(c, id, patch) {
		return
	}
	patch.Apply(&task)
	tc.afterWrite(ctx, action, id, &task)
	c.Status(http.StatusNoContent)
}

// findTask looks id up and writes 404 when it does not exist. The store
// filter is a substring match, so the result is narrowed to the exact id.
func (tc *TaskController) findTask(c *gin.Context, id string) (models.Task, bool) {
	tasks, err := tc.store.Select(c.Request.Context(), database.TasksTable, database.Filter{"id": id})
	if err != nil {
		tc.internalError(c, "Task lookup failed", err)
		return models.Task{}, false
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	c.JSON(http.StatusNotFound, MsgNotFound(id))
	return models.Task{}, false
}

func (tc *TaskController) update(c *gin.Context, id string, patch models.TaskPatch) bool {
	updated, err := tc.store.Update(c.Request.Context(), database.TasksTable, id, patch)
	if err != nil {
		tc.internalError(c, "Task update failed", err)
		return false
	}
	if !updated {
		c.JSON(http.StatusNotFound, MsgNotFound(id))
		return false
	}
	return true
}

// afterWrite drops cached lists and publishes the event. Neither affects the response.
func (tc *TaskController) afterWrite(ctx context.Context, action, id string, task *models.Task) {
	if tc.cache != nil {
		tc.cache.Invalidate(ctx)
	}
	if tc.events == nil {
		return
	}
	ev := models.TaskEvent{Action: action, ID: id, Task: task, OccurredAt: tc.now()}
	if err := tc.events.Publish(ctx, ev); err != nil {
		logger.Error(ctx, "Task event publish failed", "error", err, "action", action, "id", id)
	}
}

func (tc *TaskController) internalError(c *gin.Context, msg string, err error) {
	logger.Error(c.Request.Context(), msg, "error", err)
	c.JSON(http.StatusInternalServerError, MsgInternal)
}

// bindBody decodes a JSON body into dst. An empty body leaves dst zero.
func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		logger.Debug(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, MsgInvalidJSON)
		return false
	}
	return true
}
