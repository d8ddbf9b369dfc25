package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"shareit/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Pagination PaginationConfig `yaml:"pagination"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Seed       SeedConfig       `yaml:"seed"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled bool `yaml:"enabled"`
	// Schedule is a Go duration between backups, e.g. "24h".
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP              APIHTTPConfig      `yaml:"http"`
	RateLimit         APIRateLimitConfig `yaml:"rate_limit"`
	ReadHeaderTimeout time.Duration      `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration      `yaml:"write_timeout"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type PaginationConfig struct {
	BookingsSize  int `yaml:"bookings_size"`
	ItemsSize     int `yaml:"items_size"`
	RequestsSize  int `yaml:"requests_size"`
	MaxExportRows int `yaml:"max_export_rows"`
}

type GatewayConfig struct {
	Port          int             `yaml:"port"`
	BackendURL    string          `yaml:"backend_url"`
	Timeout       time.Duration   `yaml:"timeout"`
	UserRateLimit UserQuotaConfig `yaml:"user_rate_limit"`
	Retry         RetryConfig     `yaml:"retry"`
}

type UserQuotaConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
}

type SeedConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Gateway.BackendURL == "" {
		return errors.New("gateway backend_url is required")
	}
	if c.Pagination.BookingsSize < 1 || c.Pagination.ItemsSize < 1 || c.Pagination.RequestsSize < 1 {
		return errors.New("pagination sizes must be positive")
	}
	if c.Pagination.MaxExportRows < 1 {
		return errors.New("pagination max_export_rows must be positive")
	}
	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		return errors.New("backup storage_path is required when backup is enabled")
	}
	if c.Backup.Schedule != "" {
		if _, err := time.ParseDuration(c.Backup.Schedule); err != nil {
			return fmt.Errorf("invalid backup schedule %q: %w", c.Backup.Schedule, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.ReadHeaderTimeout == 0 {
		c.API.ReadHeaderTimeout = 5 * time.Second
	}
	if c.API.WriteTimeout == 0 {
		c.API.WriteTimeout = 15 * time.Second
	}
	if c.API.RateLimit.RPS > 0 && c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	if c.Pagination.BookingsSize == 0 {
		c.Pagination.BookingsSize = models.DefaultBookingsPageSize
	}
	if c.Pagination.ItemsSize == 0 {
		c.Pagination.ItemsSize = models.DefaultItemsPageSize
	}
	if c.Pagination.RequestsSize == 0 {
		c.Pagination.RequestsSize = models.DefaultRequestsPageSize
	}
	if c.Pagination.MaxExportRows == 0 {
		c.Pagination.MaxExportRows = models.MaxExportRows
	}

	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8081
	}
	if c.Gateway.BackendURL == "" {
		c.Gateway.BackendURL = fmt.Sprintf("http://localhost:%d", c.API.HTTP.Port)
	}
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 10 * time.Second
	}
	if c.Gateway.UserRateLimit.Requests > 0 && c.Gateway.UserRateLimit.Window == 0 {
		c.Gateway.UserRateLimit.Window = time.Minute
	}
	if c.Gateway.Retry.InitialDelay == 0 {
		c.Gateway.Retry.InitialDelay = 100 * time.Millisecond
	}
	if c.Gateway.Retry.MaxDelay == 0 {
		c.Gateway.Retry.MaxDelay = 2 * time.Second
	}
	if c.Gateway.Retry.BackoffFactor == 0 {
		c.Gateway.Retry.BackoffFactor = 2
	}

	if c.Backup.Enabled && c.Backup.Schedule == "" {
		c.Backup.Schedule = "24h"
	}
}
