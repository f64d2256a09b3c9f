package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// Redis / cache Configuration
	Redis RedisConfig `json:"redis"`
	Cache CacheConfig `json:"cache"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	Environment  string `json:"environment"` // development, staging, production
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// RedisConfig contains cache store connection configuration
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`

	// Per-operation timeout; cache calls must never stall a request.
	OpTimeout time.Duration `json:"op_timeout"`
}

// CacheConfig holds the TTLs for each cached read path. Feed pages use a
// short TTL so staleness stays bounded even when an invalidation is missed;
// the slower-moving aggregates live longer.
type CacheConfig struct {
	FeedTTL      time.Duration `json:"feed_ttl"`
	UserReviews  time.Duration `json:"user_reviews_ttl"`
	Profile      time.Duration `json:"profile_ttl"`
	FollowingTTL time.Duration `json:"following_ttl"`
	ReviewTTL    time.Duration `json:"review_ttl"`
	AlbumTTL     time.Duration `json:"album_ttl"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// Load builds a Config from environment variables with sane defaults.
// Callers load .env via godotenv before calling this.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("SERVER_PORT", "8080"),
			Host:         getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvIntOrDefault("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", 15),
			Environment:  getEnvOrDefault("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnvOrDefault("DB_HOST", "localhost"),
			Port:         getEnvOrDefault("DB_PORT", "3306"),
			Username:     getEnvOrDefault("DB_USER", "halfnote"),
			Password:     getEnvOrDefault("DB_PASSWORD", ""),
			DatabaseName: getEnvOrDefault("DB_NAME", "halfnote_db"),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password:  getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:        getEnvIntOrDefault("REDIS_DB", 0),
			OpTimeout: getEnvDurationOrDefault("REDIS_OP_TIMEOUT", 250*time.Millisecond),
		},
		Cache: CacheConfig{
			FeedTTL:      getEnvDurationOrDefault("CACHE_FEED_TTL", 2*time.Minute),
			UserReviews:  getEnvDurationOrDefault("CACHE_USER_REVIEWS_TTL", 5*time.Minute),
			Profile:      getEnvDurationOrDefault("CACHE_PROFILE_TTL", 10*time.Minute),
			FollowingTTL: getEnvDurationOrDefault("CACHE_FOLLOWING_TTL", 10*time.Minute),
			ReviewTTL:    getEnvDurationOrDefault("CACHE_REVIEW_TTL", 15*time.Minute),
			AlbumTTL:     getEnvDurationOrDefault("CACHE_ALBUM_TTL", time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
