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

// PointsConsumer consumes settlement messages and credits loyalty points.
// Delivery is at-least-once; the points service is idempotent on order id,
// so redeliveries after a missed ack are harmless. Failed deliveries are
// rejected without requeue and dead-lettered by the broker.
type PointsConsumer struct {
	connection *Connection
	service    *points.Service
	logger     coreport.Logger
}

// NewPointsConsumer creates a new PointsConsumer
func NewPointsConsumer(connection *Connection, service *points.Service, logger coreport.Logger) *PointsConsumer {
	return &PointsConsumer{
		connection: connection,
		service:    service,
		logger:     logger,
	}
}

// Start opens a dedicated channel and consumes until the context ends
func (c *PointsConsumer) Start(ctx context.Context) error {
	channel, err := c.connection.ConsumerChannel()
	if err != nil {
		return err
	}

	// One unacked message at a time keeps redelivery windows small
	if err := channel.Qos(c.connection.config.PrefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set consumer prefetch: %w", err)
	}

	deliveries, err := channel.Consume(
		c.connection.config.PointsQueue,
		"points-consumer",
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start points consumer: %w", err)
	}

	c.logger.Info("Points consumer started", map[string]any{
		"queue": c.connection.config.PointsQueue,
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Points consumer stopping", nil)
				_ = channel.Close()
				return
			case delivery, ok := <-deliveries:
				if !ok {
					c.logger.Warn("Points consumer delivery channel closed", nil)
					return
				}
				c.handleDelivery(ctx, &delivery)
			}
		}
	}()

	return nil
}

// handleDelivery processes one delivery and settles its fate: ack on
// success or known-duplicate, reject without requeue on failure so the
// broker dead-letters it
func (c *PointsConsumer) handleDelivery(ctx context.Context, delivery *amqp.Delivery) {
	var message entity.PointsMessage
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		c.logger.Error("Dropping malformed points message", map[string]any{
			"error": err.Error(),
		})
		c.reject(delivery)
		return
	}

	if _, err := c.service.AddPoints(ctx, message.OrderID, message.UserID, message.Points); err != nil {
		c.logger.Error("Failed to credit points, dead-lettering message", map[string]any{
			"message_id": message.MessageID,
			"order_id":   message.OrderID,
			"error":      err.Error(),
		})
		c.reject(delivery)
		return
	}

	if err := delivery.Ack(false); err != nil {
		// The broker will redeliver; the order-id ledger absorbs the repeat
		c.logger.Warn("Failed to ack points message", map[string]any{
			"message_id": message.MessageID,
			"error":      err.Error(),
		})
	}
}

func (c *PointsConsumer) reject(delivery *amqp.Delivery) {
	if err := delivery.Reject(false); err != nil {
		c.logger.Warn("Failed to reject delivery", map[string]any{"error": err.Error()})
	}
}
