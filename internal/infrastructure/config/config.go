package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	RabbitMQ    RabbitMQConfig   `mapstructure:"rabbitmq"`
	Logger      LoggerConfig     `mapstructure:"logger"`
	Workflow    WorkflowConfig   `mapstructure:"workflow"`
	Supervisor  SupervisorConfig `mapstructure:"supervisor"`
	Outbox      OutboxConfig     `mapstructure:"outbox"`
	Points      PointsConfig     `mapstructure:"points"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// RabbitMQConfig contains message broker settings
type RabbitMQConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	VHost            string        `mapstructure:"vhost"`
	Exchange         string        `mapstructure:"exchange"`
	DLXExchange      string        `mapstructure:"dlxExchange"`
	PointsQueue      string        `mapstructure:"pointsQueue"`
	PointsRoutingKey string        `mapstructure:"pointsRoutingKey"`
	DeadLetterQueue  string        `mapstructure:"deadLetterQueue"`
	MessageTTL       time.Duration `mapstructure:"messageTTL"` // seconds
	PrefetchCount    int           `mapstructure:"prefetchCount"`
	RetryAttempts    int           `mapstructure:"retryAttempts"`
	RetryDelay       time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// WorkflowConfig contains charge workflow settings
type WorkflowConfig struct {
	ChargingSuccessRate float64 `mapstructure:"chargingSuccessRate"`
}

// SupervisorConfig contains reconciliation supervisor settings
type SupervisorConfig struct {
	ScanInterval time.Duration `mapstructure:"scanInterval"` // seconds
	StuckTimeout time.Duration `mapstructure:"stuckTimeout"` // seconds
}

// OutboxConfig contains outbox relay settings
type OutboxConfig struct {
	ScanInterval    time.Duration `mapstructure:"scanInterval"` // seconds
	BatchSize       int           `mapstructure:"batchSize"`
	MaxRetry        int           `mapstructure:"maxRetry"`
	PublishAttempts int           `mapstructure:"publishAttempts"`
}

// PointsConfig contains points policy settings
type PointsConfig struct {
	Mode  string `mapstructure:"mode"`
	Ratio string `mapstructure:"ratio"`
}
