package messaging

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config represents message broker configuration
type Config struct {
	Host             string        `mapstructure:"mq_host"`
	Port             int           `mapstructure:"mq_port"`
	Username         string        `mapstructure:"mq_username"`
	Password         string        `mapstructure:"mq_password"`
	VHost            string        `mapstructure:"mq_vhost"`
	Exchange         string        `mapstructure:"mq_exchange"`
	DLXExchange      string        `mapstructure:"mq_dlx_exchange"`
	PointsQueue      string        `mapstructure:"mq_points_queue"`
	PointsRoutingKey string        `mapstructure:"mq_points_routing_key"`
	DeadLetterQueue  string        `mapstructure:"mq_dead_letter_queue"`
	MessageTTL       time.Duration `mapstructure:"mq_message_ttl"`
	PrefetchCount    int           `mapstructure:"mq_prefetch_count"`
	RetryAttempts    int           `mapstructure:"mq_retry_attempts"`
	RetryDelay       int           `mapstructure:"mq_retry_delay"`
}

// DefaultConfig returns a Config with default values
// Credentials must come from environment variables
func DefaultConfig() *Config {
	return &Config{
		Host:             brokerEnv("CS_MQ_HOST"),
		Port:             brokerEnvAsInt("CS_MQ_PORT", 5672),
		Username:         brokerEnv("CS_MQ_USERNAME"),
		Password:         brokerEnv("CS_MQ_PASSWORD"),
		VHost:            os.Getenv("CS_MQ_VHOST"),
		Exchange:         brokerEnvOrDefault("CS_MQ_EXCHANGE", "charging.settlement"),
		DLXExchange:      brokerEnvOrDefault("CS_MQ_DLX_EXCHANGE", "charging.settlement.dlx"),
		PointsQueue:      brokerEnvOrDefault("CS_MQ_POINTS_QUEUE", "points.credit"),
		PointsRoutingKey: brokerEnvOrDefault("CS_MQ_POINTS_ROUTING_KEY", "points.credit"),
		DeadLetterQueue:  brokerEnvOrDefault("CS_MQ_DEAD_LETTER_QUEUE", "points.credit.dlq"),
		MessageTTL:       time.Duration(brokerEnvAsInt("CS_MQ_MESSAGE_TTL_SECONDS", 30)) * time.Second,
		PrefetchCount:    brokerEnvAsInt("CS_MQ_PREFETCH_COUNT", 1),
		RetryAttempts:    brokerEnvAsInt("CS_MQ_RETRY_ATTEMPTS", 3),
		RetryDelay:       brokerEnvAsInt("CS_MQ_RETRY_DELAY_SECONDS", 5),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("broker host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", c.Port)
	}
	if c.Username == "" {
		return errors.New("broker username is required")
	}
	if c.Password == "" {
		return errors.New("broker password is required")
	}
	if c.Exchange == "" || c.DLXExchange == "" {
		return errors.New("exchange names are required")
	}
	if c.Exchange == c.DLXExchange {
		return errors.New("work exchange and dead-letter exchange must differ")
	}
	if c.PointsQueue == "" || c.DeadLetterQueue == "" {
		return errors.New("queue names are required")
	}
	if c.PrefetchCount <= 0 {
		return fmt.Errorf("prefetch count must be positive, got: %d", c.PrefetchCount)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts must be non-negative, got: %d", c.RetryAttempts)
	}
	return nil
}

// URL returns the AMQP connection string. Credentials and vhost are
// URL-encoded so special characters survive parsing.
func (c *Config) URL() string {
	u := &url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
	}
	if c.VHost != "" {
		u.Path = "/" + c.VHost
		u.RawPath = "/" + url.QueryEscape(c.VHost)
	}
	return u.String()
}

// Helper functions for environment variables

func brokerEnv(key string) string {
	return os.Getenv(key)
}

func brokerEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func brokerEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
