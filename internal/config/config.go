package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "GATEWAY_"

type Config struct {
	Primary    Primary          `koanf:"primary"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	PlaceToPay PlaceToPayConfig `koanf:"placetopay"`
	Retry      RetryConfig      `koanf:"retry"`
	Worker     WorkerConfig     `koanf:"worker"`
	Logger     LoggerConfig     `koanf:"logger"`
}

// ClientConfig is the subset needed to talk to the processor without running
// the service.
type ClientConfig struct {
	PlaceToPay PlaceToPayConfig `koanf:"placetopay"`
	Retry      RetryConfig      `koanf:"retry"`
	Logger     LoggerConfig     `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig is optional. An empty Addr disables the reference guard and
// leaves duplicate detection to the journal's unique index.
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	ReferenceTTL time.Duration `koanf:"reference_ttl"`
}

type PlaceToPayConfig struct {
	BaseURL         string        `koanf:"base_url" validate:"required,url"`
	Login           string        `koanf:"login" validate:"required"`
	SecretKey       string        `koanf:"secret_key" validate:"required"`
	Timeout         time.Duration `koanf:"timeout" validate:"required"`
	Locale          string        `koanf:"locale" validate:"required"`
	DefaultCurrency string        `koanf:"default_currency" validate:"required,len=3"`
}

type RetryConfig struct {
	BaseDelay  time.Duration `koanf:"base_delay"`
	MaxRetries int           `koanf:"max_retries"`
}

// WorkerConfig drives the reconciler that settles PENDING journal entries.
type WorkerConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Interval   time.Duration `koanf:"interval"`
	PendingAge time.Duration `koanf:"pending_age"`
	BatchSize  int           `koanf:"batch_size"`
}

// Validate checks the schedule of an enabled worker. A disabled worker may
// leave every field zero.
func (w WorkerConfig) Validate() error {
	if !w.Enabled {
		return nil
	}
	if w.Interval <= 0 {
		return fmt.Errorf("worker.interval must be positive, got %s", w.Interval)
	}
	if w.BatchSize <= 0 {
		return fmt.Errorf("worker.batch_size must be positive, got %d", w.BatchSize)
	}
	if w.PendingAge < 0 {
		return fmt.Errorf("worker.pending_age must not be negative, got %s", w.PendingAge)
	}
	return nil
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

var defaults = map[string]interface{}{
	"placetopay.timeout":          "30s",
	"placetopay.locale":           "es_CO",
	"placetopay.default_currency": "COP",
	"retry.base_delay":            "500ms",
	"retry.max_retries":           3,
	"redis.reference_ttl":         "24h",
	"worker.enabled":              true,
	"worker.interval":             "1m",
	"worker.pending_age":          "2m",
	"worker.batch_size":           50,
	"logger.level":                "info",
	"logger.format":               "text",
}

// LoadConfig reads the full service configuration from GATEWAY_* variables.
func LoadConfig() (*Config, error) {
	mainConfig := &Config{}
	if err := load(mainConfig); err != nil {
		return nil, err
	}
	if err := mainConfig.Worker.Validate(); err != nil {
		return nil, err
	}
	return mainConfig, nil
}

// LoadClientConfig reads only the processor, retry and logger sections.
func LoadClientConfig() (*ClientConfig, error) {
	clientConfig := &ClientConfig{}
	if err := load(clientConfig); err != nil {
		return nil, err
	}
	return clientConfig, nil
}

func load(target interface{}) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		logger.Error("failed to load config defaults", "error", err)
		return err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return err
	}

	err = k.Unmarshal("", target)
	if err != nil {
		logger.Error("could not unmarshal config", "error", err)
		return err
	}

	validate := validator.New()

	err = validate.Struct(target)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return err
	}

	return nil
}
