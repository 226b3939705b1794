package postgres

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection-pool configuration, generalized from
// the teacher's postgres.Config with the knobs pgxpool.Config actually
// understands (the teacher parsed duration strings at pool-build time; this
// keeps the same env-driven shape).
type Config struct {
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

// NewConfigFromEnv creates a database configuration from environment variables.
func NewConfigFromEnv() *Config {
	return &Config{
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
	}
}

// ConnectionString builds a libpq-style connection string.
func (c *Config) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return d
}
