package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"task-tracker/internal/models"
	"task-tracker/internal/queue"
	"task-tracker/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// GroupID is the consumer group shared by every replica.
const GroupID = "task-event-workers"

// Invalidator drops cached task lists.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Run starts the Kafka consumer: reads task events, writes an audit log line
// per event and invalidates the list cache. Blocks until ctx is cancelled.
// inv may be nil when no cache is configured.
func Run(ctx context.Context, inv Invalidator) {
	brokers := queue.Brokers()
	if len(brokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}
	topic := queue.Topic()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", topic, "group", GroupID)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info(ctx, "Kafka consumer stopped")
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := handleMessage(ctx, msg.Value, inv); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
		}
		// Commit malformed messages too so they cannot block the partition.
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
	}
}

func handleMessage(ctx context.Context, payload []byte, inv Invalidator) error {
	var ev models.TaskEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("decode task event: %w", err)
	}
	switch ev.Action {
	case models.ActionCreated, models.ActionUpdated, models.ActionCompleted,
		models.ActionReopened, models.ActionDeleted:
	default:
		return fmt.Errorf("unknown task event action %q", ev.Action)
	}
	logger.Info(ctx, "Task event", "action", ev.Action, "id", ev.ID, "occurred_at", ev.OccurredAt)
	if inv != nil {
		inv.Invalidate(ctx)
	}
	return nil
}
