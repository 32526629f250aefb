package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// PortalConfig locates the portal and limits the request rate to it
type PortalConfig struct {
	URL               string        `envconfig:"URL" default:"http://127.0.0.1:5001"`
	Timeout           time.Duration `envconfig:"TIMEOUT" default:"10s"`
	RequestsPerSecond float64       `envconfig:"RPS" default:"2"`
	Burst             int           `envconfig:"BURST" default:"5"`
}

// CacheConfig sets the cache TTLs and the optional Redis store
type CacheConfig struct {
	ForecastTTL    time.Duration `envconfig:"FORECAST_TTL" default:"5m"`
	HourlyTTL      time.Duration `envconfig:"HOURLY_TTL" default:"30s"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	RedisPrefix    string        `envconfig:"REDIS_PREFIX" default:"portal:"`
	RedisRetention time.Duration `envconfig:"REDIS_RETENTION" default:"24h"`
}

// CalculatorConfig configures the currency calculator
type CalculatorConfig struct {
	RatesFile string  `envconfig:"RATES_FILE" default:"rates.json"`
	MaxDigits int     `envconfig:"MAX_DIGITS" default:"9"`
	MaxAmount float64 `envconfig:"MAX_AMOUNT" default:"999999999999"`
}

// WeatherConfig configures the background forecast refresher
type WeatherConfig struct {
	// Locations are place names geocoded at startup; empty means the default location only
	Locations       []string      `envconfig:"LOCATIONS"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5m"`
	FetchTimeout    time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
}

// AppConfig is the configuration of the portal widgets, read from the environment
type AppConfig struct {
	Env        string           `envconfig:"APP_ENV" default:"development"`
	LogLevel   string           `envconfig:"LOG_LEVEL" default:"info"`
	StatusPort int              `envconfig:"STATUS_PORT" default:"8080"` // 0 disables the status server
	Portal     PortalConfig     `envconfig:"PORTAL"`
	Cache      CacheConfig      `envconfig:"CACHE"`
	Calculator CalculatorConfig `envconfig:"CALC"`
	Weather    WeatherConfig    `envconfig:"WEATHER"`
}

// Load reads an optional .env file (or the given files) into the process
// environment and decodes the environment into an AppConfig
func Load(logger *zap.Logger, envFiles ...string) (*AppConfig, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var err error
	if len(envFiles) > 0 && envFiles[0] != "" {
		err = godotenv.Load(envFiles...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		logger.Debug("No .env file loaded, using system environment variables", zap.Error(err))
	} else {
		logger.Debug("Environment variables loaded from .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) normalize() {
	c.Portal.URL = strings.TrimRight(strings.TrimSpace(c.Portal.URL), "/")

	locations := c.Weather.Locations[:0]
	for _, loc := range c.Weather.Locations {
		if loc = strings.TrimSpace(loc); loc != "" {
			locations = append(locations, loc)
		}
	}
	c.Weather.Locations = locations
}

// Validate reports the first invalid setting
func (c *AppConfig) Validate() error {
	switch {
	case c.Portal.URL == "":
		return errors.New("PORTAL_URL must not be empty")
	case c.Portal.Timeout <= 0:
		return errors.New("PORTAL_TIMEOUT must be positive")
	case c.Portal.RequestsPerSecond <= 0:
		return errors.New("PORTAL_RPS must be positive")
	case c.Portal.Burst < 1:
		return errors.New("PORTAL_BURST must be at least 1")
	case c.Cache.ForecastTTL <= 0 || c.Cache.HourlyTTL <= 0:
		return errors.New("cache TTLs must be positive")
	case c.Calculator.MaxDigits < 0:
		return errors.New("CALC_MAX_DIGITS must not be negative")
	case c.Calculator.MaxAmount <= 0:
		return errors.New("CALC_MAX_AMOUNT must be positive")
	case c.StatusPort < 0 || c.StatusPort > 65535:
		return errors.New("STATUS_PORT must be between 0 and 65535")
	case c.Weather.RefreshInterval <= 0:
		return errors.New("WEATHER_REFRESH_INTERVAL must be positive")
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production logging
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// NewLogger builds the application logger: JSON output in production,
// human-readable console output otherwise, at LOG_LEVEL
func NewLogger(c *AppConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}

	zc := zap.NewDevelopmentConfig()
	if c.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
