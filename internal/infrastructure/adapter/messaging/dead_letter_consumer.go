package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/points"
)

// DeadLetterConsumer drains the dead-letter queue into the failed message
// table for manual remediation. Every delivery is acked, even on error:
// requeueing a poison message back onto the dead-letter queue would loop
// forever, and an operator can still recover it from the broker logs.
type DeadLetterConsumer struct {
	connection *Connection
	service    *points.Service
	logger     coreport.Logger
}

// NewDeadLetterConsumer creates a new DeadLetterConsumer
func NewDeadLetterConsumer(connection *Connection, service *points.Service, logger coreport.Logger) *DeadLetterConsumer {
	return &DeadLetterConsumer{
		connection: connection,
		service:    service,
		logger:     logger,
	}
}

// Start opens a dedicated channel and consumes until the context ends
func (c *DeadLetterConsumer) Start(ctx context.Context) error {
	channel, err := c.connection.ConsumerChannel()
	if err != nil {
		return err
	}

	deliveries, err := channel.Consume(
		c.connection.config.DeadLetterQueue,
		"dead-letter-consumer",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start dead-letter consumer: %w", err)
	}

	c.logger.Info("Dead-letter consumer started", map[string]any{
		"queue": c.connection.config.DeadLetterQueue,
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Dead-letter consumer stopping", nil)
				_ = channel.Close()
				return
			case delivery, ok := <-deliveries:
				if !ok {
					c.logger.Warn("Dead-letter consumer delivery channel closed", nil)
					return
				}
				c.handleDelivery(ctx, &delivery)
			}
		}
	}()

	return nil
}

// handleDelivery quarantines one dead-lettered message
func (c *DeadLetterConsumer) handleDelivery(ctx context.Context, delivery *amqp.Delivery) {
	var message entity.PointsMessage
	reason := deathReason(delivery)

	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		// Keep what we can; the raw body is gone but the event is recorded
		c.logger.Error("Dead-lettered message is not parseable", map[string]any{
			"error": err.Error(),
		})
		message = entity.PointsMessage{}
		reason = fmt.Sprintf("unparseable payload: %s", err.Error())
	}

	if err := c.service.RecordFailedMessage(ctx, message, reason); err != nil {
		c.logger.Error("Failed to quarantine dead-lettered message", map[string]any{
			"message_id": message.MessageID,
			"error":      err.Error(),
		})
	}

	if err := delivery.Ack(false); err != nil {
		c.logger.Warn("Failed to ack dead-lettered message", map[string]any{
			"message_id": message.MessageID,
			"error":      err.Error(),
		})
	}
}

// deathReason extracts the broker's x-death reason when present
func deathReason(delivery *amqp.Delivery) string {
	deaths, ok := delivery.Headers["x-death"].([]interface{})
	if !ok || len(deaths) == 0 {
		return "dead-lettered"
	}

	death, ok := deaths[0].(amqp.Table)
	if !ok {
		return "dead-lettered"
	}

	if reason, ok := death["reason"].(string); ok {
		return fmt.Sprintf("dead-lettered: %s", reason)
	}
	return "dead-lettered"
}
