package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-enrollment-service/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "course-enrollment-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, config.CatalogModePostgres, cfg.Catalog.Mode)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout())
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL())
	assert.True(t, cfg.Postgres.RunMigrations)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_NAME", "enrollments-staging")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("REDIS_COUNT_CACHE_TTL_SECONDS", "120")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "enrollments-staging", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, time.Duration(0), cfg.App.RequestTimeout())
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 120*time.Second, cfg.Redis.CacheTTL())
}

func TestLoadCatalogMode(t *testing.T) {
	t.Setenv("CATALOG_MODE", "grpc")
	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("CATALOG_MODE", "http")
	t.Setenv("CATALOG_BASE_URL", "")
	_, err = config.Load()
	require.Error(t, err)

	t.Setenv("CATALOG_BASE_URL", "http://catalog.internal:8080")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.CatalogModeHTTP, cfg.Catalog.Mode)
	assert.Equal(t, "http://catalog.internal:8080", cfg.Catalog.BaseURL)
}

func TestLoadBadIntsFallBack(t *testing.T) {
	t.Setenv("POSTGRES_MAX_CONNS", "lots")
	t.Setenv("CATALOG_TIMEOUT_SECONDS", "fast")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.EqualValues(t, 10, cfg.Postgres.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout())
}
