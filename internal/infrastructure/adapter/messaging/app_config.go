package messaging

import (
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/config"
)

// CreateConfigFromAppConfig adapts the global configuration to broker
// configuration. Environment variables win over file values for
// credentials.
func CreateConfigFromAppConfig(conf *config.Config) *Config {
	mqConf := DefaultConfig()

	if mqConf.Host == "" {
		mqConf.Host = conf.RabbitMQ.Host
	}
	if conf.RabbitMQ.Port > 0 && brokerEnv("CS_MQ_PORT") == "" {
		mqConf.Port = conf.RabbitMQ.Port
	}
	if mqConf.Username == "" {
		mqConf.Username = conf.RabbitMQ.Username
	}
	if mqConf.Password == "" {
		mqConf.Password = conf.RabbitMQ.Password
	}
	if mqConf.VHost == "" {
		mqConf.VHost = conf.RabbitMQ.VHost
	}

	if conf.RabbitMQ.Exchange != "" {
		mqConf.Exchange = conf.RabbitMQ.Exchange
	}
	if conf.RabbitMQ.DLXExchange != "" {
		mqConf.DLXExchange = conf.RabbitMQ.DLXExchange
	}
	if conf.RabbitMQ.PointsQueue != "" {
		mqConf.PointsQueue = conf.RabbitMQ.PointsQueue
	}
	if conf.RabbitMQ.PointsRoutingKey != "" {
		mqConf.PointsRoutingKey = conf.RabbitMQ.PointsRoutingKey
	}
	if conf.RabbitMQ.DeadLetterQueue != "" {
		mqConf.DeadLetterQueue = conf.RabbitMQ.DeadLetterQueue
	}
	if conf.RabbitMQ.MessageTTL > 0 {
		mqConf.MessageTTL = conf.RabbitMQ.MessageTTL
	}
	if conf.RabbitMQ.PrefetchCount > 0 {
		mqConf.PrefetchCount = conf.RabbitMQ.PrefetchCount
	}
	if conf.RabbitMQ.RetryAttempts > 0 {
		mqConf.RetryAttempts = conf.RabbitMQ.RetryAttempts
	}
	if conf.RabbitMQ.RetryDelay > 0 {
		mqConf.RetryDelay = int(conf.RabbitMQ.RetryDelay.Seconds())
	}

	return mqConf
}
