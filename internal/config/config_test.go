package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONFIG_FILE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/mesa")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MENU_CACHE_TTL", "90s")
	t.Setenv("REALTIME_BACKEND", "memory")
	t.Setenv("ORDER_NUMBER_RETRIES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 90*time.Second, cfg.Redis.MenuCacheTTL)
	assert.Equal(t, "memory", cfg.Redis.RealtimeBackend)
	assert.Equal(t, 5, cfg.Orders.NumberRetries)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_ConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mesa.toml")
	content := `
[server]
port = 7000
log_level = "debug"

[database]
url = "postgres://file/mesa"

[redis]
addr = "redis:6379"
realtime_backend = "redis"

[jobs]
report_cron = "0 1 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "7001")
	t.Setenv("JWT_SECRET", "x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "postgres://file/mesa", cfg.Database.URL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "0 1 * * *", cfg.Jobs.ReportCron)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/mesa")

	t.Run("port", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("realtime backend", func(t *testing.T) {
		t.Setenv("REALTIME_BACKEND", "kafka")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("retries", func(t *testing.T) {
		t.Setenv("ORDER_NUMBER_RETRIES", "0")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoad_GeneratesDevSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/mesa")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Len(t, cfg.Auth.JWTSecret, 32)
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	cfg.Server.LogLevel = "DEBUG"
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())
	cfg.Server.LogLevel = "nonsense"
	assert.Equal(t, "INFO", cfg.SlogLevel().String())
}
