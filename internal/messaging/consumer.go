package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"shelley-server/internal/models"
	"shelley-server/internal/repository"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// TelemetryConsumer drains the telemetry queue into the Postgres
// archive.
type TelemetryConsumer struct {
	channel   *amqp.Channel
	queueName string
	telemetry repository.TelemetryRepository
	logger    *zap.Logger
}

// NewTelemetryConsumer opens a channel, declares the queue and sets a
// small prefetch so a burst of events does not flood one consumer.
func NewTelemetryConsumer(conn *amqp.Connection, telemetry repository.TelemetryRepository, logger *zap.Logger) (*TelemetryConsumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("telemetry consumer: failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(TelemetryQueueName, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("telemetry consumer: failed to declare queue %q: %w", TelemetryQueueName, err)
	}

	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("telemetry consumer: failed to set QoS: %w", err)
	}

	return &TelemetryConsumer{
		channel:   ch,
		queueName: TelemetryQueueName,
		telemetry: telemetry,
		logger:    logger.Named("TelemetryConsumer"),
	}, nil
}

// Run consumes until ctx is cancelled or the delivery channel closes.
// Manual acks: a record is acked only once archived. Malformed bodies
// are dropped, insert failures are requeued once by the broker.
func (c *TelemetryConsumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("telemetry consumer: failed to start consuming: %w", err)
	}

	c.logger.Info("Telemetry consumer started", zap.String("queue", c.queueName))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Telemetry consumer stopping")
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("Telemetry delivery channel closed")
				return nil
			}
			c.handle(ctx, delivery)
		}
	}
}

// Close releases the consumer channel.
func (c *TelemetryConsumer) Close() error {
	return c.channel.Close()
}

func (c *TelemetryConsumer) handle(ctx context.Context, delivery amqp.Delivery) {
	var record models.GameSessionRecord
	if err := json.Unmarshal(delivery.Body, &record); err != nil {
		// Poison message: requeueing would loop forever.
		c.logger.Warn("Dropping malformed telemetry message", zap.Error(err))
		_ = delivery.Nack(false, false)
		return
	}

	if err := c.telemetry.Insert(ctx, record); err != nil {
		requeue := !delivery.Redelivered
		c.logger.Error("Failed to archive game session record",
			zap.String("action", record.Action), zap.Bool("requeue", requeue), zap.Error(err))
		_ = delivery.Nack(false, requeue)
		return
	}

	if err := delivery.Ack(false); err != nil {
		c.logger.Warn("Failed to ack telemetry message", zap.Error(err))
	}
}
