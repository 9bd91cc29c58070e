package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service configuration
type Config struct {
	Service   ServiceConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Kinship   KinshipConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name                  string
	Port                  int
	Environment           string
	LogLevel              string
	LogFormat             string
	InternalServiceSecret string
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds settings for the hot relationship cache tier
type CacheConfig struct {
	Enabled    bool
	Backend    string // "memory" or "redis"
	DefaultTTL time.Duration
}

// KinshipConfig holds resolver settings
type KinshipConfig struct {
	RootPersonID       int64 // 0 = use the person flagged is_root
	Locale             string
	ComputeTimeout     time.Duration
	MaxDepth           int
	PersistGenerations bool
	MutationChannel    string
}

// RateLimitConfig holds per-client limits for relationship queries
type RateLimitConfig struct {
	Enabled   bool
	PerMinute int64
}

// TelemetryConfig holds observability settings
type TelemetryConfig struct {
	EnablePprof   bool
	PprofPort     int
	EnableMetrics bool
	MetricsPort   int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:                  serviceName,
			Port:                  getEnvInt("PORT", 8080),
			Environment:           getEnv("ENVIRONMENT", "development"),
			LogLevel:              getEnv("LOG_LEVEL", "info"),
			LogFormat:             getEnv("LOG_FORMAT", "text"),
			InternalServiceSecret: getEnv("INTERNAL_SERVICE_SECRET", "default-internal-secret-change-in-prod"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "silsilah"),
			User:        getEnv("POSTGRES_USER", "silsilah"),
			Password:    getEnv("POSTGRES_PASSWORD", "silsilah"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 20),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 2),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Enabled:    getEnvBool("CACHE_ENABLED", true),
			Backend:    getEnv("CACHE_BACKEND", "memory"),
			DefaultTTL: getEnvDuration("CACHE_DEFAULT_TTL", 1*time.Hour),
		},
		Kinship: KinshipConfig{
			RootPersonID:       getEnvInt64("KINSHIP_ROOT_PERSON_ID", 0),
			Locale:             getEnv("KINSHIP_LOCALE", "id"),
			ComputeTimeout:     getEnvDuration("KINSHIP_COMPUTE_TIMEOUT", 10*time.Second),
			MaxDepth:           getEnvInt("KINSHIP_MAX_DEPTH", 64),
			PersistGenerations: getEnvBool("KINSHIP_PERSIST_GENERATIONS", true),
			MutationChannel:    getEnv("KINSHIP_MUTATION_CHANNEL", "family:graph:mutated"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   getEnvBool("RATE_LIMIT_ENABLED", false),
			PerMinute: getEnvInt64("RATE_LIMIT_PER_MINUTE", 120),
		},
		Telemetry: TelemetryConfig{
			EnablePprof:   getEnvBool("ENABLE_PPROF", false),
			PprofPort:     getEnvInt("PPROF_PORT", 6060),
			EnableMetrics: getEnvBool("ENABLE_METRICS", true),
			MetricsPort:   getEnvInt("METRICS_PORT", 9090),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}

	switch c.Kinship.Locale {
	case "id", "en":
	default:
		return fmt.Errorf("unsupported kinship locale: %s", c.Kinship.Locale)
	}

	if c.Kinship.RootPersonID < 0 {
		return fmt.Errorf("invalid root person id: %d", c.Kinship.RootPersonID)
	}

	if c.Kinship.MaxDepth < 1 {
		return fmt.Errorf("kinship max depth must be positive")
	}

	if c.Kinship.ComputeTimeout <= 0 {
		return fmt.Errorf("kinship compute timeout must be positive")
	}

	if c.RateLimit.Enabled && c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("rate limit must be positive when enabled")
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
