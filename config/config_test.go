package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithEnvOverrides(t *testing.T) {
	t.Setenv("PRODUCTSEARCH_CATALOG_BASE_URL", "https://shop.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, "https://shop.example.com", cfg.Catalog.BaseURL)
	assert.Equal(t, 50, cfg.Catalog.PageSize)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 12, cfg.Ranking.TopN)
	assert.Equal(t, 6, cfg.Ranking.FetchWorkers)
	assert.Equal(t, 10*time.Second, cfg.Ranking.FetchTimeout)
	assert.False(t, cfg.Moderation.Enabled)
	assert.InDelta(t, 0.7, cfg.Moderation.Threshold, 1e-9)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PRODUCTSEARCH_CATALOG_BASE_URL", "https://shop.example.com")
	t.Setenv("PRODUCTSEARCH_SERVER_PORT", "9090")
	t.Setenv("PRODUCTSEARCH_SERVER_ENVIRONMENT", "production")
	t.Setenv("PRODUCTSEARCH_CACHE_TTL", "15m")
	t.Setenv("PRODUCTSEARCH_RANKING_TOP_N", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Environment)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 20, cfg.Ranking.TopN)
}

func TestLoad_MissingCatalogBaseURL(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog base URL")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Catalog.BaseURL = "https://shop.example.com"
		cfg.Catalog.PageSize = 50
		cfg.Ranking.TopN = 12
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, validate(base()))
	})

	t.Run("non-positive page size fails", func(t *testing.T) {
		cfg := base()
		cfg.Catalog.PageSize = 0
		assert.Error(t, validate(cfg))
	})

	t.Run("non-positive top_n fails", func(t *testing.T) {
		cfg := base()
		cfg.Ranking.TopN = -1
		assert.Error(t, validate(cfg))
	})

	t.Run("moderation enabled without base URL fails", func(t *testing.T) {
		cfg := base()
		cfg.Moderation.Enabled = true
		cfg.Moderation.Threshold = 0.7
		assert.Error(t, validate(cfg))
	})

	t.Run("moderation threshold outside (0,1] fails", func(t *testing.T) {
		cfg := base()
		cfg.Moderation.Enabled = true
		cfg.Moderation.BaseURL = "https://classify.example.com"
		cfg.Moderation.Threshold = 1.5
		assert.Error(t, validate(cfg))
	})

	t.Run("moderation fully configured passes", func(t *testing.T) {
		cfg := base()
		cfg.Moderation.Enabled = true
		cfg.Moderation.BaseURL = "https://classify.example.com"
		cfg.Moderation.Threshold = 0.7
		assert.NoError(t, validate(cfg))
	})
}
