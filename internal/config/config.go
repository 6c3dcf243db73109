package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ISTHISAI_SERVER_PORT
const EnvPrefix = "ISTHISAI"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Detection DetectionConfig `mapstructure:"detection"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port    int           `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DetectionConfig struct {
	MaxTextLength  int      `mapstructure:"max_text_length"`
	MaxImageBytes  int64    `mapstructure:"max_image_bytes"`
	WorkerPoolSize int      `mapstructure:"worker_pool_size"`
	BatchLimit     int      `mapstructure:"batch_limit"`
	DisabledChecks []string `mapstructure:"disabled_checks"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from defaults, an optional config.yaml and the environment
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads configuration into v. Callers may pre-set a config file on v.
func LoadWith(v *viper.Viper) (*Config, error) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("detection.max_text_length", 100000)
	v.SetDefault("detection.max_image_bytes", 10*1024*1024)
	v.SetDefault("detection.worker_pool_size", 10)
	v.SetDefault("detection.batch_limit", 100)
	v.SetDefault("detection.disabled_checks", []string{})
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// config file is optional; a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Detection.WorkerPoolSize <= 0 {
		return fmt.Errorf("detection.worker_pool_size must be positive, got %d", c.Detection.WorkerPoolSize)
	}
	if c.Detection.BatchLimit <= 0 {
		return fmt.Errorf("detection.batch_limit must be positive, got %d", c.Detection.BatchLimit)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path)
	}
	return nil
}

// NewLogger builds a logrus logger from the log section
func NewLogger(cfg LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json", "":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("log.format %q: want json or text", cfg.Format)
	}
	return logger, nil
}
