package messaging

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeclareTopology declares the work exchange, the points queue wired to a
// dead-letter exchange, and the dead-letter queue behind it. Rejected
// deliveries and messages that exceed the queue TTL are routed to the
// dead-letter queue by the broker; the application never re-publishes them.
func DeclareTopology(ch *amqp.Channel, cfg *Config) error {
	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare work exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(
		cfg.DLXExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare dead-letter exchange: %w", err)
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    cfg.DLXExchange,
		"x-dead-letter-routing-key": cfg.PointsRoutingKey,
	}
	if cfg.MessageTTL > 0 {
		queueArgs["x-message-ttl"] = cfg.MessageTTL.Milliseconds()
	}

	if _, err := ch.QueueDeclare(
		cfg.PointsQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		queueArgs,
	); err != nil {
		return fmt.Errorf("declare points queue: %w", err)
	}

	if err := ch.QueueBind(cfg.PointsQueue, cfg.PointsRoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind points queue: %w", err)
	}

	if _, err := ch.QueueDeclare(
		cfg.DeadLetterQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare dead-letter queue: %w", err)
	}

	if err := ch.QueueBind(cfg.DeadLetterQueue, cfg.PointsRoutingKey, cfg.DLXExchange, false, nil); err != nil {
		return fmt.Errorf("bind dead-letter queue: %w", err)
	}

	return nil
}
