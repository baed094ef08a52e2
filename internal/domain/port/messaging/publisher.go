package messaging

import (
	"context"
)

// Publisher delivers a message body to the broker under a routing key.
// Delivery is at-least-once; downstream consumers must be idempotent.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}
