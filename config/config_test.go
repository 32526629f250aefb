package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(zaptest.NewLogger(t), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "http://127.0.0.1:5001", cfg.Portal.URL)
	assert.Equal(t, 10*time.Second, cfg.Portal.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ForecastTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.HourlyTTL)
	assert.Empty(t, cfg.Cache.RedisURL)
	assert.Equal(t, "portal:", cfg.Cache.RedisPrefix)
	assert.Equal(t, 9, cfg.Calculator.MaxDigits)
	assert.InDelta(t, 999999999999.0, cfg.Calculator.MaxAmount, 0.5)
	assert.Empty(t, cfg.Weather.Locations)
	assert.Equal(t, 8080, cfg.StatusPort)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "PORTAL_URL=http://portal.local:8000/\n" +
		"CACHE_REDIS_URL=redis://localhost:6379/2\n" +
		"CACHE_HOURLY_TTL=1m\n" +
		"WEATHER_LOCATIONS=Kraków, Gdańsk ,\n" +
		"CALC_MAX_DIGITS=12\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv does not override variables that are already set
	for _, key := range []string{"PORTAL_URL", "CACHE_REDIS_URL", "CACHE_HOURLY_TTL", "WEATHER_LOCATIONS", "CALC_MAX_DIGITS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(zaptest.NewLogger(t), envFile)
	require.NoError(t, err)

	assert.Equal(t, "http://portal.local:8000", cfg.Portal.URL)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Cache.RedisURL)
	assert.Equal(t, time.Minute, cfg.Cache.HourlyTTL)
	assert.Equal(t, []string{"Kraków", "Gdańsk"}, cfg.Weather.Locations)
	assert.Equal(t, 12, cfg.Calculator.MaxDigits)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad duration", "PORTAL_TIMEOUT", "soon"},
		{"zero rps", "PORTAL_RPS", "0"},
		{"negative digits", "CALC_MAX_DIGITS", "-1"},
		{"unknown log level", "LOG_LEVEL", "loud"},
		{"port out of range", "STATUS_PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(zaptest.NewLogger(t), filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &AppConfig{Env: "production", LogLevel: "warn"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	cfg = &AppConfig{Env: "development", LogLevel: "debug"}
	logger, err = NewLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}
