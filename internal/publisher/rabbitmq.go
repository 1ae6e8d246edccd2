package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"inbox_sync/internal/domain"
)

const RunIDHeader = "run_id"

type RabbitMQ struct {
	conn               *amqp.Connection
	channel            *amqp.Channel
	exchange           string
	eventsRoutingKey   string
	ingestedRoutingKey string
	startQueue         string
	logger             *slog.Logger
}

type Config struct {
	URL                string
	Exchange           string
	EventsRoutingKey   string
	IngestedRoutingKey string
	// StartQueue is declared and consumed only when set.
	StartQueue string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if cfg.StartQueue != "" {
		if _, err := ch.QueueDeclare(
			cfg.StartQueue,
			true,
			false,
			false,
			false,
			nil,
		); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("declare queue: %w", err)
		}

		// One run at a time per consumer; the next command is delivered after the ack.
		if err := ch.Qos(1, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("set qos: %w", err)
		}
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"start_queue", cfg.StartQueue,
		"events_routing_key", cfg.EventsRoutingKey,
		"ingested_routing_key", cfg.IngestedRoutingKey,
	)

	return &RabbitMQ{
		conn:               conn,
		channel:            ch,
		exchange:           cfg.Exchange,
		eventsRoutingKey:   cfg.EventsRoutingKey,
		ingestedRoutingKey: cfg.IngestedRoutingKey,
		startQueue:         cfg.StartQueue,
		logger:             logger,
	}, nil
}

type EventMessage struct {
	RunID       string       `json:"runId"`
	WorkspaceID string       `json:"workspaceId"`
	Event       domain.Event `json:"event"`
	Timestamp   time.Time    `json:"timestamp"`
}

// PublishEvent relays one run event. Events of a run share the run_id header.
func (r *RabbitMQ) PublishEvent(ctx context.Context, runID, workspaceID string, event domain.Event) error {
	msg := EventMessage{
		RunID:       runID,
		WorkspaceID: workspaceID,
		Event:       event,
		Timestamp:   time.Now().UTC(),
	}

	if err := r.publish(ctx, r.eventsRoutingKey, msg, amqp.Table{RunIDHeader: runID}); err != nil {
		return err
	}

	r.logger.Debug("published event",
		"run_id", runID,
		"kind", event.Kind,
	)

	return nil
}

func (r *RabbitMQ) PublishIngested(ctx context.Context, notice *domain.IngestNotice) error {
	if err := r.publish(ctx, r.ingestedRoutingKey, notice, nil); err != nil {
		return err
	}

	r.logger.Debug("published ingest notice",
		"workspace_id", notice.WorkspaceID,
		"external_id", notice.ExternalID,
		"created", notice.Created,
	)

	return nil
}

// Consume delivers start commands from the start queue with manual acknowledgement.
func (r *RabbitMQ) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	if r.startQueue == "" {
		return nil, fmt.Errorf("consume: no start queue configured")
	}

	deliveries, err := r.channel.ConsumeWithContext(
		ctx,
		r.startQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", r.startQueue, err)
	}

	return deliveries, nil
}

func (r *RabbitMQ) publish(ctx context.Context, routingKey string, payload any, headers amqp.Table) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
