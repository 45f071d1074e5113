package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Catalog       CatalogConfig
	HomeAssistant HomeAssistantConfig `mapstructure:"homeassistant"`
	Cache         CacheConfig
	Sync          SyncConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds the external product catalog configuration
type CatalogConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// HomeAssistantConfig holds list-service and sensor configuration
type HomeAssistantConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Token        string `mapstructure:"token"`
	ListEntity   string `mapstructure:"list_entity"`
	SensorEntity string `mapstructure:"sensor_entity"`
}

// CacheConfig holds the persisted barcode cache configuration
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// SyncConfig holds resolution and list-sync tuning
type SyncConfig struct {
	SettleDelay      time.Duration `mapstructure:"settle_delay"`
	ListWaitAttempts int           `mapstructure:"list_wait_attempts"`
	ListWaitInterval time.Duration `mapstructure:"list_wait_interval"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/beepbasket/")

	// Environment variable settings
	v.SetEnvPrefix("BEEPBASKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Catalog defaults
	v.SetDefault("catalog.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.user_agent", "beepbasket/1.0")

	// Home Assistant defaults. Token and list entity have no usable
	// default; registering them lets AutomaticEnv pick them up.
	v.SetDefault("homeassistant.base_url", "http://homeassistant.local:8123")
	v.SetDefault("homeassistant.token", "")
	v.SetDefault("homeassistant.list_entity", "")
	v.SetDefault("homeassistant.sensor_entity", "dustbin_barcode")

	// Cache defaults
	v.SetDefault("cache.path", "data/barcode_cache.json")

	// Sync defaults
	v.SetDefault("sync.settle_delay", "1s")
	v.SetDefault("sync.list_wait_attempts", 15)
	v.SetDefault("sync.list_wait_interval", "2s")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.HomeAssistant.Token == "" {
		return fmt.Errorf("Home Assistant token is required (set BEEPBASKET_HOMEASSISTANT_TOKEN)")
	}

	if config.HomeAssistant.ListEntity == "" {
		return fmt.Errorf("target list entity is required (set BEEPBASKET_HOMEASSISTANT_LIST_ENTITY)")
	}

	if config.Sync.ListWaitAttempts < 1 {
		return fmt.Errorf("sync.list_wait_attempts must be at least 1, got: %d", config.Sync.ListWaitAttempts)
	}

	return nil
}
