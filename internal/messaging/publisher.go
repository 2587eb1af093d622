// Package messaging carries game_session telemetry over RabbitMQ: the
// bridge gateway publishes, the consumer archives into Postgres. The
// queue decouples gameplay from archival; a slow database never stalls
// a connected game.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shelley-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// TelemetryQueueName is the durable queue shared by publisher and
// consumer.
const TelemetryQueueName = "game_session_events"

// TelemetryPublisher posts game_session records onto the queue.
type TelemetryPublisher interface {
	PublishGameSession(ctx context.Context, record models.GameSessionRecord) error
}

type rabbitTelemetryPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// Compile-time check to ensure implementation satisfies the interface.
var _ TelemetryPublisher = (*rabbitTelemetryPublisher)(nil)

// NewRabbitTelemetryPublisher opens a channel and declares the durable
// telemetry queue. Declaration parameters must match the consumer's.
func NewRabbitTelemetryPublisher(conn *amqp.Connection, logger *zap.Logger) (TelemetryPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("telemetry publisher: failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		TelemetryQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("telemetry publisher: failed to declare queue %q: %w", TelemetryQueueName, err)
	}

	return &rabbitTelemetryPublisher{
		channel:   ch,
		queueName: TelemetryQueueName,
		logger:    logger.Named("TelemetryPublisher"),
	}, nil
}

func (p *rabbitTelemetryPublisher) PublishGameSession(ctx context.Context, record models.GameSessionRecord) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}

	body, err := json.Marshal(record)
	if err != nil {
		p.logger.Error("Failed to marshal game session record", zap.Error(err))
		return fmt.Errorf("failed to marshal game session record: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for attempt := 1; attempt <= 3; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // default exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        "shelley-server",
			},
		)
		if err == nil {
			return nil
		}
		p.logger.Warn("Failed to publish game session record, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("failed to publish to queue %s after retries: %w", p.queueName, err)
}
