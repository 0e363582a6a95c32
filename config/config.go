package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Catalog    CatalogConfig
	Cache      CacheConfig
	Ranking    RankingConfig
	Moderation ModerationConfig
	Thumbnails ThumbnailConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds upstream storefront API configuration
type CatalogConfig struct {
	AccessToken string `mapstructure:"access_token"`
	BaseURL     string `mapstructure:"base_url"`
	PageSize    int    `mapstructure:"page_size"`
}

// CacheConfig holds product corpus cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RankingConfig holds similarity ranker configuration
type RankingConfig struct {
	TopN         int           `mapstructure:"top_n"`
	FetchWorkers int           `mapstructure:"fetch_workers"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// ModerationConfig holds optional content-moderation configuration.
// Moderation is wired only when Enabled is true.
type ModerationConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	APIKey           string   `mapstructure:"api_key"`
	BaseURL          string   `mapstructure:"base_url"`
	Threshold        float64  `mapstructure:"threshold"`
	DisallowedLabels []string `mapstructure:"disallowed_labels"`
}

// ThumbnailConfig holds transient thumbnail storage configuration
type ThumbnailConfig struct {
	Dir    string        `mapstructure:"dir"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/product-search/")

	// Environment variable settings
	v.SetEnvPrefix("PRODUCTSEARCH")
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
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Catalog defaults. Empty defaults keep env-only keys visible to
	// Unmarshal via AutomaticEnv.
	v.SetDefault("catalog.access_token", "")
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.page_size", 50)

	// Cache defaults
	v.SetDefault("cache.ttl", "30m")

	// Ranking defaults
	v.SetDefault("ranking.top_n", 12)
	v.SetDefault("ranking.fetch_workers", 6)
	v.SetDefault("ranking.fetch_timeout", "10s")

	// Moderation defaults
	v.SetDefault("moderation.enabled", false)
	v.SetDefault("moderation.api_key", "")
	v.SetDefault("moderation.base_url", "")
	v.SetDefault("moderation.threshold", 0.7)
	v.SetDefault("moderation.disallowed_labels", []string{"nudity", "violence"})

	// Thumbnail defaults
	v.SetDefault("thumbnails.dir", "./thumbnails")
	v.SetDefault("thumbnails.max_age", "1h")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog base URL is required (set PRODUCTSEARCH_CATALOG_BASE_URL)")
	}

	if config.Catalog.PageSize <= 0 {
		return fmt.Errorf("catalog page size must be positive, got: %d", config.Catalog.PageSize)
	}

	if config.Ranking.TopN <= 0 {
		return fmt.Errorf("ranking top_n must be positive, got: %d", config.Ranking.TopN)
	}

	if config.Moderation.Enabled {
		if config.Moderation.BaseURL == "" {
			return fmt.Errorf("moderation base URL is required when moderation is enabled")
		}
		if config.Moderation.Threshold <= 0 || config.Moderation.Threshold > 1 {
			return fmt.Errorf("moderation threshold must be in (0, 1], got: %v", config.Moderation.Threshold)
		}
	}

	return nil
}
