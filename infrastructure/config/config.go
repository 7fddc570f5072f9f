package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion         string
	DynamoDBTable     string
	ByStatusIndexName string // GSI1 - customer/status listings
	ByResourceIndex   string // GSI2 - entries attached to one resource
	EventBusName      string
	RecoveryQueueURL  string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Import configuration
	ImportParallelism int

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:     getEnv("SERVER_ADDRESS", ":8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		AWSRegion:         getEnv("AWS_REGION", "eu-west-1"),
		DynamoDBTable:     getEnv("TABLE_NAME", "scholar-resources"),
		ByStatusIndexName: getEnv("BY_STATUS_INDEX_NAME", "ByTypeCustomerStatus"),
		ByResourceIndex:   getEnv("BY_RESOURCE_INDEX_NAME", "ResourceByIdentifier"),
		EventBusName:      getEnv("EVENT_BUS_NAME", "scholar-events"),
		RecoveryQueueURL:  getEnv("RECOVERY_QUEUE_URL", ""),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		ImportParallelism: getEnvInt("IMPORT_PARALLELISM", 4),

		// Authentication
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "scholar-backend"),

		// Logging and features
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.ImportParallelism < 1 {
		return fmt.Errorf("IMPORT_PARALLELISM must be at least 1")
	}
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.RecoveryQueueURL == "" {
			return fmt.Errorf("RECOVERY_QUEUE_URL is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
