package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./.env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
	"../../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file first
	if err := loadDotEnvFile(); err != nil {
		// Don't return error, just log it or continue
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")

	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Set environment variables to override config
	v.SetEnvPrefix("CS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Process environment variable overrides for sensitive values
	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env

	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile attempts to load environment variables from .env files
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}

	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	// Non-critical server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	// Database defaults for non-sensitive settings
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 50)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 30) // minutes
	v.SetDefault("database.connMaxIdleTime", 15) // minutes
	v.SetDefault("database.queryTimeout", 5)     // seconds
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds

	// Broker defaults for non-sensitive settings
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.exchange", "charging.settlement")
	v.SetDefault("rabbitmq.dlxExchange", "charging.settlement.dlx")
	v.SetDefault("rabbitmq.pointsQueue", "points.credit")
	v.SetDefault("rabbitmq.pointsRoutingKey", "points.credit")
	v.SetDefault("rabbitmq.deadLetterQueue", "points.credit.dlq")
	v.SetDefault("rabbitmq.messageTTL", 30) // seconds
	v.SetDefault("rabbitmq.prefetchCount", 1)
	v.SetDefault("rabbitmq.retryAttempts", 3)
	v.SetDefault("rabbitmq.retryDelay", 5) // seconds

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	// Workflow defaults
	v.SetDefault("workflow.chargingSuccessRate", 0.7)

	// Supervisor defaults
	v.SetDefault("supervisor.scanInterval", 30) // seconds
	v.SetDefault("supervisor.stuckTimeout", 60) // seconds

	// Outbox relay defaults
	v.SetDefault("outbox.scanInterval", 5) // seconds
	v.SetDefault("outbox.batchSize", 100)
	v.SetDefault("outbox.maxRetry", 5)
	v.SetDefault("outbox.publishAttempts", 2)

	// Points policy defaults
	v.SetDefault("points.mode", "ratio")
	v.SetDefault("points.ratio", "0.01")
}

// getEnvironment determines the environment to use based on CS_ENV environment variable
func getEnvironment() string {
	env := os.Getenv("CS_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures environment variables override config values
// This function prioritizes environment variables over configuration file values
func processEnvOverrides(v *viper.Viper) {
	// Database sensitive information
	if dbHost := os.Getenv("CS_DB_HOST"); dbHost != "" {
		v.Set("database.host", dbHost)
	}
	if dbPort := os.Getenv("CS_DB_PORT"); dbPort != "" {
		v.Set("database.port", dbPort)
	}
	if dbUser := os.Getenv("CS_DB_USERNAME"); dbUser != "" {
		v.Set("database.username", dbUser)
	}
	if dbPass := os.Getenv("CS_DB_PASSWORD"); dbPass != "" {
		v.Set("database.password", dbPass)
	}
	if dbName := os.Getenv("CS_DB_NAME"); dbName != "" {
		v.Set("database.database", dbName)
	}
	if sslMode := os.Getenv("CS_DB_SSL_MODE"); sslMode != "" {
		v.Set("database.sslMode", sslMode)
	}

	// Broker sensitive information
	if mqHost := os.Getenv("CS_MQ_HOST"); mqHost != "" {
		v.Set("rabbitmq.host", mqHost)
	}
	if mqPort := getEnvInt("CS_MQ_PORT", 0); mqPort > 0 {
		v.Set("rabbitmq.port", mqPort)
	}
	if mqUser := os.Getenv("CS_MQ_USERNAME"); mqUser != "" {
		v.Set("rabbitmq.username", mqUser)
	}
	if mqPass := os.Getenv("CS_MQ_PASSWORD"); mqPass != "" {
		v.Set("rabbitmq.password", mqPass)
	}
	if mqVHost := os.Getenv("CS_MQ_VHOST"); mqVHost != "" {
		v.Set("rabbitmq.vhost", mqVHost)
	}

	// Server settings
	if serverHost := os.Getenv("CS_SERVER_HOST"); serverHost != "" {
		v.Set("server.host", serverHost)
	}
	if serverPort := os.Getenv("CS_SERVER_PORT"); serverPort != "" {
		v.Set("server.port", serverPort)
	}

	// Logger settings
	if logLevel := os.Getenv("CS_LOGGER_LEVEL"); logLevel != "" {
		v.Set("logger.level", logLevel)
	}

	// Workflow settings
	if rate := os.Getenv("CS_WORKFLOW_CHARGING_SUCCESS_RATE"); rate != "" {
		if parsed, err := strconv.ParseFloat(rate, 64); err == nil {
			v.Set("workflow.chargingSuccessRate", parsed)
		}
	}

	// Supervisor settings
	if interval := getEnvInt("CS_SUPERVISOR_SCAN_INTERVAL_SECONDS", 0); interval > 0 {
		v.Set("supervisor.scanInterval", interval)
	}
	if timeout := getEnvInt("CS_SUPERVISOR_STUCK_TIMEOUT_SECONDS", 0); timeout > 0 {
		v.Set("supervisor.stuckTimeout", timeout)
	}

	// Outbox settings
	if interval := getEnvInt("CS_OUTBOX_SCAN_INTERVAL_SECONDS", 0); interval > 0 {
		v.Set("outbox.scanInterval", interval)
	}
	if batch := getEnvInt("CS_OUTBOX_BATCH_SIZE", 0); batch > 0 {
		v.Set("outbox.batchSize", batch)
	}
	if maxRetry := getEnvInt("CS_OUTBOX_MAX_RETRY", 0); maxRetry > 0 {
		v.Set("outbox.maxRetry", maxRetry)
	}

	// Points settings
	if mode := os.Getenv("CS_POINTS_MODE"); mode != "" {
		v.Set("points.mode", mode)
	}
	if ratio := os.Getenv("CS_POINTS_RATIO"); ratio != "" {
		v.Set("points.ratio", ratio)
	}
}

// Helper function to get environment variable as int
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	// Convert seconds to time.Duration
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	// Convert minutes to time.Duration
	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute

	// Convert seconds to time.Duration
	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second
	config.RabbitMQ.MessageTTL = time.Duration(config.RabbitMQ.MessageTTL) * time.Second
	config.RabbitMQ.RetryDelay = time.Duration(config.RabbitMQ.RetryDelay) * time.Second
	config.Supervisor.ScanInterval = time.Duration(config.Supervisor.ScanInterval) * time.Second
	config.Supervisor.StuckTimeout = time.Duration(config.Supervisor.StuckTimeout) * time.Second
	config.Outbox.ScanInterval = time.Duration(config.Outbox.ScanInterval) * time.Second
}
