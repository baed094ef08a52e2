package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/messaging"
)

// Publisher publishes persistent messages to the work exchange
type Publisher struct {
	connection *Connection
	exchange   string
	logger     coreport.Logger
}

// NewPublisher creates a new Publisher bound to the work exchange
func NewPublisher(connection *Connection, logger coreport.Logger) messaging.Publisher {
	return &Publisher{
		connection: connection,
		exchange:   connection.config.Exchange,
		logger:     logger,
	}
}

// Publish delivers a message body under the routing key. Messages are
// persistent so a broker restart does not drop relayed settlements.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	channel, err := p.connection.Channel()
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrBrokerUnavailable, err.Error())
	}

	err = channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish message", map[string]any{
			"exchange":    p.exchange,
			"routing_key": routingKey,
			"error":       err.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrBrokerUnavailable, err.Error())
	}

	p.logger.Debug("Message published", map[string]any{
		"exchange":    p.exchange,
		"routing_key": routingKey,
		"bytes":       len(body),
	})
	return nil
}
