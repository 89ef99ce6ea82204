package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"catalog-analytics/internal/domain"

	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	App       AppConfig
	Analytics AnalyticsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigin   string
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig holds Redis connection settings. Redis is optional:
// without it the dedup cache and rate limiting are disabled.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Environment        string
	LogLevel           string
	LogFile            string
	RateLimitEnabled   bool
	RateLimitPerMinute int
	EnableMetrics      bool
}

// AnalyticsConfig holds the ingestion and cleanup tunables
type AnalyticsConfig struct {
	DedupWindow         time.Duration
	CleanupProbability  float64
	CleanupTimeout      time.Duration
	CleanupSchedule     string
	UnknownClientPolicy string
	DedupCacheEnabled   bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     parseDuration("SERVER_READ_TIMEOUT", "10s"),
			WriteTimeout:    parseDuration("SERVER_WRITE_TIMEOUT", "10s"),
			IdleTimeout:     parseDuration("SERVER_IDLE_TIMEOUT", "120s"),
			ShutdownTimeout: parseDuration("SERVER_SHUTDOWN_TIMEOUT", "30s"),
			AllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "catalog"),
			Password:        getEnv("DB_PASSWORD", "dev_password_123"),
			DBName:          getEnv("DB_NAME", "catalog"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    parseInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    parseInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: parseDuration("DB_CONN_MAX_LIFETIME", "5m"),
			AutoMigrate:     parseBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Enabled:  parseBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt("REDIS_DB", 0),
		},
		App: AppConfig{
			Environment:        getEnv("APP_ENV", "development"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			LogFile:            getEnv("LOG_FILE", ""),
			RateLimitEnabled:   parseBool("RATE_LIMIT_ENABLED", true),
			RateLimitPerMinute: parseInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120),
			EnableMetrics:      parseBool("ENABLE_METRICS", true),
		},
		Analytics: AnalyticsConfig{
			DedupWindow:         parseDuration("ANALYTICS_DEDUP_WINDOW", "24h"),
			CleanupProbability:  parseFloat("ANALYTICS_CLEANUP_PROBABILITY", 0.01),
			CleanupTimeout:      parseDuration("ANALYTICS_CLEANUP_TIMEOUT", "30s"),
			CleanupSchedule:     getEnv("ANALYTICS_CLEANUP_SCHEDULE", ""),
			UnknownClientPolicy: getEnv("ANALYTICS_UNKNOWN_CLIENT_POLICY", string(domain.UnknownClientShared)),
			DedupCacheEnabled:   parseBool("ANALYTICS_DEDUP_CACHE_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Analytics.DedupWindow <= 0 {
		errs = append(errs, fmt.Errorf("ANALYTICS_DEDUP_WINDOW must be positive, got %s", c.Analytics.DedupWindow))
	}
	if p := c.Analytics.CleanupProbability; p < 0 || p > 1 {
		errs = append(errs, fmt.Errorf("ANALYTICS_CLEANUP_PROBABILITY must be within [0, 1], got %v", p))
	}
	if c.Analytics.CleanupTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ANALYTICS_CLEANUP_TIMEOUT must be positive, got %s", c.Analytics.CleanupTimeout))
	}
	if _, err := domain.ParseUnknownClientPolicy(c.Analytics.UnknownClientPolicy); err != nil {
		errs = append(errs, fmt.Errorf("ANALYTICS_UNKNOWN_CLIENT_POLICY: %w", err))
	}
	if spec := c.Analytics.CleanupSchedule; spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("ANALYTICS_CLEANUP_SCHEDULE %q: %w", spec, err))
		}
	}
	if c.App.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive, got %d", c.App.RateLimitPerMinute))
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address in host:port format
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
