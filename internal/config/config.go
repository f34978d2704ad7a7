package config

import (
	"errors"
	"fmt"
	"os"

	"tallergo/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Shop       ShopConfig       `yaml:"shop"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Google     GoogleConfig     `yaml:"google"`
	Exports    ExportConfig     `yaml:"exports"`
	Seeds      SeedsConfig      `yaml:"seeds"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// ShopConfig describes the workshop itself; served verbatim on the
// public shop endpoint.
type ShopConfig struct {
	Name      string  `yaml:"name" json:"name"`
	Address   string  `yaml:"address" json:"address"`
	Phone     string  `yaml:"phone" json:"phone"`
	Email     string  `yaml:"email" json:"email"`
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
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
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `yaml:"prometheus_enabled"`
	PrometheusPort    int    `yaml:"prometheus_port"`
	HealthCheckPort   int    `yaml:"health_check_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Port            int                `yaml:"port"`
	SessionTTL      int                `yaml:"session_ttl"`
	RateLimit       APIRateLimitConfig `yaml:"rate_limit"`
	ShutdownTimeout int                `yaml:"shutdown_timeout"`
}

type APIRateLimitConfig struct {
	Requests int `yaml:"requests"`
	Window   int `yaml:"window"`
}

// BookingConfig governs the appointment workflow. CustomerMatch selects
// between the two historical duplicate-phone behaviors: "reuse" updates
// the existing customer row, "insert" always creates a new one.
type BookingConfig struct {
	CustomerMatch  string `yaml:"customer_match"`
	MaxAdvanceDays int    `yaml:"max_advance_days"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
	Debug    bool   `yaml:"debug"`
}

type GoogleConfig struct {
	Enabled               bool   `yaml:"enabled"`
	GoogleCredentialsFile string `yaml:"credentials_file"`
	AppointmentsSheetID   string `yaml:"appointments_spreadsheet_id"`
	CustomersSheetID      string `yaml:"customers_spreadsheet_id"`
}

type ExportConfig struct {
	Path      string `yaml:"path"`
	RangeDays int    `yaml:"range_days"`
}

// SeedsConfig points at the catalog/inventory seed file loaded on first run.
type SeedsConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; ignore a missing file.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
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

	if c.Booking.CustomerMatch != models.CustomerMatchReuse && c.Booking.CustomerMatch != models.CustomerMatchInsert {
		return fmt.Errorf("booking.customer_match must be %q or %q, got %q",
			models.CustomerMatchReuse, models.CustomerMatchInsert, c.Booking.CustomerMatch)
	}

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required when telegram is enabled")
	}

	if c.Google.Enabled && c.Google.GoogleCredentialsFile == "" {
		return errors.New("google.credentials_file is required when google sync is enabled")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.SessionTTL == 0 {
		c.API.SessionTTL = models.DefaultSessionTTL
	}
	if c.API.RateLimit.Requests == 0 {
		c.API.RateLimit.Requests = models.RateLimitRequests
	}
	if c.API.RateLimit.Window == 0 {
		c.API.RateLimit.Window = models.RateLimitWindow
	}
	if c.API.ShutdownTimeout == 0 {
		c.API.ShutdownTimeout = 10
	}
	if c.Booking.CustomerMatch == "" {
		c.Booking.CustomerMatch = models.CustomerMatchReuse
	}
	if c.Booking.MaxAdvanceDays == 0 {
		c.Booking.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Exports.RangeDays == 0 {
		c.Exports.RangeDays = models.DefaultExportRangeDays
	}
	if c.Seeds.Path == "" {
		c.Seeds.Path = "configs/seeds.yaml"
	}
}
