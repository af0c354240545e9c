// Package config provides configuration loading and validation utilities.
package config

import (
	"fmt"
	"time"

	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
)

// Config holds runtime configuration for the NanoCoin game bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	I18n      I18nConfig      `mapstructure:"i18n"`
	Economy   economy.Config  `mapstructure:"economy"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token   string        `mapstructure:"token" validate:"required"`
	Mode    string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP server exposing metrics and health probes.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode,
	)
}

// RedisConfig holds Redis connection settings shared by cache, locks,
// rate limiting, and the jobs queue.
type RedisConfig struct {
	Addr            string        `mapstructure:"addr"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// LoggerConfig controls structured logging output.
type LoggerConfig struct {
	Level  string        `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string        `mapstructure:"format" validate:"omitempty,oneof=text json"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig enables rotated file output in addition to stdout.
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// RateLimitRule is a single limit over a time window (e.g. 20 per "10s").
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}

// RateLimitActions holds per-action limits for the spam-prone game actions.
type RateLimitActions struct {
	Click RateLimitRule `mapstructure:"click"`
	Mine  RateLimitRule `mapstructure:"mine"`
	Shop  RateLimitRule `mapstructure:"shop"`
}

// RateLimitConfig configures user-level and global rate limiting.
type RateLimitConfig struct {
	Enabled   bool             `mapstructure:"enabled"`
	Global    RateLimitRule    `mapstructure:"global"`
	PerUser   RateLimitRule    `mapstructure:"per_user"`
	Actions   RateLimitActions `mapstructure:"actions"`
	Whitelist []int64          `mapstructure:"whitelist"`
}

// JobsConfig configures the asynq worker.
type JobsConfig struct {
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// I18nConfig selects the translation catalog.
type I18nConfig struct {
	Dir         string `mapstructure:"dir"`
	DefaultLang string `mapstructure:"default_lang"`
}
