// Package config loads the engine's runtime configuration from environment
// variables, the same env-var-with-defaults approach the teacher used for
// its database and Kafka configs, gathered here into one struct so main.go
// has a single thing to load and pass down.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Kafka       KafkaConfig
	Logging     LoggingConfig
	Idempotency IdempotencyConfig
	Lock        LockConfig
	Outbox      OutboxConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host              string
	Port              int
	Database          string
	User              string
	Password          string
	SSLMode           string
	MaxOpenConns      int32
	MaxIdleConns      int32
	ConnMaxLifetime   time.Duration
	ConnMaxIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type KafkaConfig struct {
	Brokers  []string
	ClientID string
	Enabled  bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

type IdempotencyConfig struct {
	RecordTTL  time.Duration
	LockTimeout time.Duration
}

type LockConfig struct {
	MigrationTimeout time.Duration
	DeadlockRetries  int
}

type OutboxConfig struct {
	BatchSize    int
	PollInterval time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			Database:          getEnv("DB_NAME", "ledger"),
			User:              getEnv("DB_USER", "ledger"),
			Password:          getEnv("DB_PASSWORD", "ledger_dev_password"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:      int32(getEnvAsInt("DB_MAX_OPEN_CONNS", 25)),
			MaxIdleConns:      int32(getEnvAsInt("DB_MAX_IDLE_CONNS", 5)),
			ConnMaxLifetime:   getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime:   getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:  splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
			ClientID: getEnv("KAFKA_CLIENT_ID", "fund-transfer-engine"),
			Enabled:  getEnvAsBool("KAFKA_ENABLED", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "INFO"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Idempotency: IdempotencyConfig{
			RecordTTL:   getEnvAsDuration("IDEMPOTENCY_RECORD_TTL", 24*time.Hour),
			LockTimeout: getEnvAsDuration("IDEMPOTENCY_LOCK_TIMEOUT", 5*time.Second),
		},
		Lock: LockConfig{
			MigrationTimeout: getEnvAsDuration("MIGRATION_LOCK_TIMEOUT", 10*time.Second),
			DeadlockRetries:  getEnvAsInt("DEADLOCK_RETRIES", 3),
		},
		Outbox: OutboxConfig{
			BatchSize:    getEnvAsInt("OUTBOX_BATCH_SIZE", 100),
			PollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
