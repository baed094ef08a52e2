package messaging

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
)

// Connection manages a broker connection and a shared channel. Channel
// access is serialized; consumers open their own channels so publisher
// traffic never blocks delivery acks.
type Connection struct {
	config *Config
	logger coreport.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewConnection creates a new broker connection manager
func NewConnection(config *Config, logger coreport.Logger) *Connection {
	return &Connection{
		config: config,
		logger: logger,
	}
}

// Connect establishes the broker connection, retrying per configuration,
// and declares the topology on the shared channel
func (c *Connection) Connect() error {
	if err := c.config.Validate(); err != nil {
		return fmt.Errorf("invalid broker configuration: %w", err)
	}

	c.logger.Info("Connecting to message broker", map[string]any{
		"host": c.config.Host,
		"port": c.config.Port,
	})

	var conn *amqp.Connection
	var err error

	for attempt := 0; attempt < c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying broker connection", map[string]any{
				"attempt": attempt + 1,
				"of":      c.config.RetryAttempts,
				"delay":   fmt.Sprintf("%ds", c.config.RetryDelay),
			})
			time.Sleep(time.Duration(c.config.RetryDelay) * time.Second)
		}

		conn, err = amqp.Dial(c.config.URL())
		if err == nil {
			break
		}

		c.logger.Error("Failed to connect to broker", map[string]any{
			"error":   err.Error(),
			"attempt": attempt + 1,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to broker after %d attempts: %w", c.config.RetryAttempts, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open broker channel: %w", err)
	}

	if err := DeclareTopology(channel, c.config); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare broker topology: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()

	c.logger.Info("Successfully connected to message broker", map[string]any{
		"exchange":     c.config.Exchange,
		"dlx_exchange": c.config.DLXExchange,
	})
	return nil
}

// Channel returns the shared channel, reopening it when closed
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil, fmt.Errorf("broker connection is not open")
	}

	if c.channel == nil || c.channel.IsClosed() {
		channel, err := c.conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("failed to reopen broker channel: %w", err)
		}
		c.channel = channel
	}

	return c.channel, nil
}

// ConsumerChannel opens a dedicated channel for a consumer
func (c *Connection) ConsumerChannel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil, fmt.Errorf("broker connection is not open")
	}

	return c.conn.Channel()
}

// Close closes the channel and connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Info("Closing broker connection", nil)

	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("Failed to close broker channel", map[string]any{"error": err.Error()})
		}
	}

	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn.Close()
	}
	return nil
}
