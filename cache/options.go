package cache

import (
	"time"

	"go.uber.org/zap"
)

type options struct {
	logger      *zap.Logger
	now         func() time.Time
	forecastTTL time.Duration
	hourlyTTL   time.Duration
}

// Option configures a Cache or a ForecastCache
type Option func(*options)

// WithLogger sets the logger used for hits, misses and refresh failures
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithForecastTTL overrides ForecastTTL for a ForecastCache
func WithForecastTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.forecastTTL = ttl
	}
}

// WithHourlyTTL overrides HourlyTTL for a ForecastCache
func WithHourlyTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.hourlyTTL = ttl
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:      zap.NewNop(),
		now:         time.Now,
		forecastTTL: ForecastTTL,
		hourlyTTL:   HourlyTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
