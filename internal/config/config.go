package config

import (
	"errors"
	"fmt"
	"os"

	"shareit/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Catalog    CatalogConfig    `yaml:"catalog"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	// Driver is one of sqlite3 (default), sqlite or pgx.
	Driver       string `yaml:"driver"`
	Path         string `yaml:"path"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
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
	HTTP      APIHTTPConfig      `yaml:"http"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // gin mode: debug, release, test
}

type APIRateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	// Requests allowed per acting user inside Window seconds.
	Requests int `yaml:"requests"`
	Window   int `yaml:"window"`
}

type BookingConfig struct {
	// RequireFutureDates additionally rejects bookings that start in the past
	// or end before now. Without it only start < end is enforced.
	RequireFutureDates bool `yaml:"require_future_dates"`
	DefaultPageSize    int  `yaml:"default_page_size"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Catalog is the seed file with the users and items the booking core looks up.
type Catalog struct {
	Users []models.User `yaml:"users"`
	Items []models.Item `yaml:"items"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
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
	switch c.Database.Driver {
	case "sqlite3", "sqlite":
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	case "pgx":
		if c.Database.DSN == "" {
			return errors.New("database dsn is required for pgx driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.API.RateLimit.Enabled && (c.API.RateLimit.Requests <= 0 || c.API.RateLimit.Window <= 0) {
		return errors.New("api.rate_limit requests and window must be positive")
	}

	return nil
}

// ValidateCatalog checks ids are set and unique and that every item owner is
// a known user.
func ValidateCatalog(catalog Catalog) error {
	userIDs := make(map[int64]bool, len(catalog.Users))
	for _, user := range catalog.Users {
		if user.ID == 0 {
			return fmt.Errorf("user '%s' has invalid ID 0", user.Name)
		}
		if userIDs[user.ID] {
			return fmt.Errorf("duplicate user ID found: %d", user.ID)
		}
		userIDs[user.ID] = true
	}

	itemIDs := make(map[int64]bool, len(catalog.Items))
	for _, item := range catalog.Items {
		if item.ID == 0 {
			return fmt.Errorf("item '%s' has invalid ID 0", item.Name)
		}
		if itemIDs[item.ID] {
			return fmt.Errorf("duplicate item ID found: %d", item.ID)
		}
		if !userIDs[item.OwnerID] {
			return fmt.Errorf("item %d references unknown owner %d", item.ID, item.OwnerID)
		}
		itemIDs[item.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite3"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.HTTP.Mode == "" {
		c.API.HTTP.Mode = "release"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.API.RateLimit.Requests == 0 {
		c.API.RateLimit.Requests = models.RateLimitRequests
	}
	if c.API.RateLimit.Window == 0 {
		c.API.RateLimit.Window = models.RateLimitWindow
	}
	if c.Booking.DefaultPageSize == 0 {
		c.Booking.DefaultPageSize = models.DefaultPageSize
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "configs/catalog.yaml"
	}
}
