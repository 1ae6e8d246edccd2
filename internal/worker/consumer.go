package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"inbox_sync/internal/domain"
)

type Starter interface {
	Start(ctx context.Context, cmd domain.StartCommand) <-chan domain.Event
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, runID, workspaceID string, event domain.Event) error
}

// Consumer turns start commands from the queue into runs and relays every run event.
// Commands are handled one at a time; a delivery is acked once its run has ended.
type Consumer struct {
	runs       Starter
	events     EventPublisher
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewConsumer(runs Starter, events EventPublisher, runTimeout time.Duration, logger *slog.Logger) *Consumer {
	return &Consumer{
		runs:       runs,
		events:     events,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	c.logger.Info("consumer started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopped")
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Warn("delivery channel closed")
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var cmd domain.StartCommand
	if err := json.Unmarshal(d.Body, &cmd); err != nil {
		c.logger.Error("dropping malformed start command", "error", err, "delivery_tag", d.DeliveryTag)
		if err := d.Reject(false); err != nil {
			c.logger.Error("failed to reject delivery", "error", err)
		}
		return
	}
	if cmd.RunID == "" {
		cmd.RunID = uuid.NewString()
	}

	logger := c.logger.With("run_id", cmd.RunID, "workspace_id", cmd.WorkspaceID)
	logger.Info("start command received", "inbox_id", cmd.ExternalInboxID, "cutoff", cmd.CutoffDate)

	runCtx := ctx
	if c.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.runTimeout)
		defer cancel()
	}

	var last domain.Event
	for event := range c.runs.Start(runCtx, cmd) {
		last = event
		if err := c.events.PublishEvent(ctx, cmd.RunID, cmd.WorkspaceID, event); err != nil {
			logger.Warn("failed to relay event", "kind", event.Kind, "error", err)
		}
	}

	if ctx.Err() != nil {
		logger.Warn("consumer stopped mid-run, requeueing command", "kind", last.Kind)
		if err := d.Nack(false, true); err != nil {
			logger.Error("failed to nack delivery", "error", err)
		}
		return
	}

	logger.Info("run finished", "kind", last.Kind, "inserted_count", last.InsertedCount)

	if err := d.Ack(false); err != nil {
		logger.Error("failed to ack delivery", "error", err)
	}
}
