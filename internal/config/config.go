package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
)

// Config is the complete process configuration. Values come from an optional
// TOML file (CONFIG_FILE) and are overridden by the environment.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Minio    MinioConfig    `toml:"minio"`
	Jobs     JobsConfig     `toml:"jobs"`
	Orders   OrdersConfig   `toml:"orders"`
}

type ServerConfig struct {
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	URL     string `toml:"url"`
	Migrate bool   `toml:"migrate"`
}

type AuthConfig struct {
	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"token_ttl"`
	JWKSURL   string        `toml:"jwks_url"`
}

type RedisConfig struct {
	Addr            string        `toml:"addr"`
	Password        string        `toml:"password"`
	DB              int           `toml:"db"`
	MenuCacheTTL    time.Duration `toml:"menu_cache_ttl"`
	RealtimeBackend string        `toml:"realtime_backend"` // "redis" or "memory"
}

type RabbitMQConfig struct {
	URL string `toml:"url"` // Empty disables kitchen publishing
}

type MinioConfig struct {
	Endpoint      string `toml:"endpoint"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	UseSSL        bool   `toml:"use_ssl"`
	ReportsBucket string `toml:"reports_bucket"`
}

type JobsConfig struct {
	ReportCron      string        `toml:"report_cron"`
	StaleOrderAfter time.Duration `toml:"stale_order_after"`
	SweepInterval   time.Duration `toml:"sweep_interval"`
}

type OrdersConfig struct {
	NumberRetries int `toml:"number_retries"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, LogLevel: "info"},
		Database: DatabaseConfig{Migrate: true},
		Auth:     AuthConfig{TokenTTL: 24 * time.Hour},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			MenuCacheTTL:    5 * time.Minute,
			RealtimeBackend: "redis",
		},
		Minio: MinioConfig{
			Endpoint:      "localhost:9000",
			AccessKey:     "minioadmin",
			SecretKey:     "minioadmin",
			ReportsBucket: "reports",
		},
		Jobs: JobsConfig{
			ReportCron:      "5 0 * * *",
			StaleOrderAfter: 12 * time.Hour,
			SweepInterval:   15 * time.Minute,
		},
		Orders: OrdersConfig{NumberRetries: 3},
	}
}

// Load builds the configuration from defaults, CONFIG_FILE and the environment.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = random.String(32)
		slog.Warn("JWT_SECRET not set, using a generated development secret")
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Server.LogLevel, "LOG_LEVEL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.JWKSURL, "JWKS_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Redis.RealtimeBackend, "REALTIME_BACKEND")
	setString(&c.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.ReportsBucket, "REPORTS_BUCKET")
	setString(&c.Jobs.ReportCron, "REPORT_CRON")

	if err = setInt(&c.Server.Port, "PORT"); err != nil {
		return err
	}
	if err = setInt(&c.Redis.DB, "REDIS_DB"); err != nil {
		return err
	}
	if err = setInt(&c.Orders.NumberRetries, "ORDER_NUMBER_RETRIES"); err != nil {
		return err
	}
	if err = setBool(&c.Database.Migrate, "MIGRATE"); err != nil {
		return err
	}
	if err = setBool(&c.Minio.UseSSL, "MINIO_USE_SSL"); err != nil {
		return err
	}
	if err = setDuration(&c.Auth.TokenTTL, "JWT_TTL"); err != nil {
		return err
	}
	if err = setDuration(&c.Redis.MenuCacheTTL, "MENU_CACHE_TTL"); err != nil {
		return err
	}
	if err = setDuration(&c.Jobs.StaleOrderAfter, "STALE_ORDER_AFTER"); err != nil {
		return err
	}
	if err = setDuration(&c.Jobs.SweepInterval, "SWEEP_INTERVAL"); err != nil {
		return err
	}
	return nil
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Redis.RealtimeBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("REALTIME_BACKEND must be redis or memory, got %q", c.Redis.RealtimeBackend)
	}
	if c.Orders.NumberRetries < 1 {
		return fmt.Errorf("ORDER_NUMBER_RETRIES must be at least 1")
	}
	return nil
}

// SlogLevel maps the configured log level name to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Server.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
