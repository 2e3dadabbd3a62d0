package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP. Empty URL disables messaging; the service then runs
	// storage-only.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Classifier. Empty path means the built-in rule table.
	ClassifierRulesPath string

	// Dashboard
	TopVendorsLimit int

	// Dashboard cache
	CacheSize int

	// Mutating requests allowed per client IP per minute.
	RateLimitPerMinute int
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/expenseiq.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expenseiq"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		ClassifierRulesPath: getEnv("CLASSIFIER_RULES_PATH", ""),

		TopVendorsLimit:    getEnvInt("TOP_VENDORS_LIMIT", 5),
		CacheSize:          getEnvInt("CACHE_SIZE", 64),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate classifier rules file if provided
	if c.ClassifierRulesPath != "" {
		if _, err := os.Stat(c.ClassifierRulesPath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("classifier rules file does not exist: %s", c.ClassifierRulesPath))
		}
	}

	if c.TopVendorsLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid top vendors limit %d: must be at least 1", c.TopVendorsLimit))
	} else if c.TopVendorsLimit > 100 {
		errors = append(errors, fmt.Sprintf("invalid top vendors limit %d: must be at most 100", c.TopVendorsLimit))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
