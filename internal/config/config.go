package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"merithub/internal/validation"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `validate:"required"`
	Database DatabaseConfig `validate:"required"`
	Cache    CacheConfig
	Logging  LoggingConfig
	Badges   BadgeConfig `validate:"required"`
}

// ServerConfig holds the ops HTTP server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            string        `json:"port" validate:"required"`
	Environment     string        `json:"environment" validate:"oneof=development staging production"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	GracefulTimeout time.Duration `json:"graceful_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                string        `json:"url" validate:"required"`
	MaxOpenConns       int           `json:"max_open_conns" validate:"min=1"`
	MaxIdleConns       int           `json:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime    time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime    time.Duration `json:"conn_max_idle_time"`
	SlowQueryThreshold time.Duration `json:"slow_query_threshold"`
	MigrationsPath     string        `json:"migrations_path"`
	ConnectRetries     int           `json:"connect_retries" validate:"min=0"`
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider      string        `json:"provider" validate:"oneof=memory redis"`
	TTL           time.Duration `json:"ttl"`
	MaxKeys       int           `json:"max_keys"`
	RedisURL      string        `json:"redis_url"`
	RedisDB       int           `json:"redis_db"`
	RedisPassword string        `json:"redis_password"`
	PoolSize      int           `json:"pool_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format"`
}

// BadgeConfig holds badge engine configuration
type BadgeConfig struct {
	// SweepInterval is the cadence of the recurring full sweep over all
	// known users. Zero disables the scheduled sweep.
	SweepInterval time.Duration `json:"sweep_interval"`
	// SweepTimeout bounds a single user's sweep. A timeout truncates the
	// sweep; every award already committed stays committed.
	SweepTimeout time.Duration `json:"sweep_timeout" validate:"required"`
	// BatchSize is the number of user refs fetched per scheduler page.
	BatchSize int `json:"batch_size" validate:"min=1"`
	// ProfileCacheTTL is how long a user aggregate profile snapshot may be
	// served from cache during reactive sweeps.
	ProfileCacheTTL time.Duration `json:"profile_cache_ttl"`
}

// Load builds configuration from the environment, loading .env files for
// non-production environments the way the rest of the platform does.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	}

	config := &Config{
		Server:   loadServerConfig(env),
		Database: loadDatabaseConfig(),
		Cache:    loadCacheConfig(),
		Logging:  loadLoggingConfig(env),
		Badges:   loadBadgeConfig(),
	}

	if err := validation.ValidateStruct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func loadServerConfig(env string) ServerConfig {
	return ServerConfig{
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Port:            getEnv("SERVER_PORT", "9100"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:                getEnv("DATABASE_URL", ""),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "migrations"),
		ConnectRetries:     getIntEnv("DB_CONNECT_RETRIES", 5),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:      getEnv("CACHE_PROVIDER", "memory"),
		TTL:           getDurationEnv("CACHE_TTL", 15*time.Minute),
		MaxKeys:       getIntEnv("CACHE_MAX_KEYS", 10000),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		PoolSize:      getIntEnv("REDIS_POOL_SIZE", 10),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	level := "debug"
	if env == "production" {
		level = "info"
	}
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", level),
		Format: getEnv("LOG_FORMAT", "json"),
	}
}

func loadBadgeConfig() BadgeConfig {
	return BadgeConfig{
		SweepInterval:   getDurationEnv("BADGE_SWEEP_INTERVAL", 6*time.Hour),
		SweepTimeout:    getDurationEnv("BADGE_SWEEP_TIMEOUT", 30*time.Second),
		BatchSize:       getIntEnv("BADGE_SWEEP_BATCH_SIZE", 100),
		ProfileCacheTTL: getDurationEnv("BADGE_PROFILE_CACHE_TTL", time.Minute),
	}
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
