package datasource

import (
	"context"
	"fmt"

	"portal-widgets/models"

	"golang.org/x/time/rate"
)

// RateLimitedSource wraps a Source with one rate limiter per endpoint
type RateLimitedSource struct {
	source          Source
	forecastLimiter *rate.Limiter
	hourlyLimiter   *rate.Limiter
	geocodeLimiter  *rate.Limiter
	name            string
}

// NewRateLimitedSource creates a rate limited source.
// rps is the maximum requests per second allowed per endpoint (can be fractional)
// burst is the maximum burst size allowed
func NewRateLimitedSource(source Source, rps float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{
		source:          source,
		forecastLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		hourlyLimiter:   rate.NewLimiter(rate.Limit(rps), burst),
		geocodeLimiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:            fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// FetchForecast fetches the daily forecast, respecting rate limits
func (r *RateLimitedSource) FetchForecast(ctx context.Context, loc models.Location) (models.Forecast, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.forecastLimiter.Wait(ctx); err != nil {
		return models.Forecast{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.FetchForecast(ctx, loc)
}

// FetchHourly fetches hourly points, respecting rate limits
func (r *RateLimitedSource) FetchHourly(ctx context.Context, loc models.Location, day int) (models.Hourly, error) {
	if err := r.hourlyLimiter.Wait(ctx); err != nil {
		return models.Hourly{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.FetchHourly(ctx, loc, day)
}

// Geocode resolves a place name, respecting rate limits
func (r *RateLimitedSource) Geocode(ctx context.Context, query string) ([]models.Place, error) {
	if err := r.geocodeLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.Geocode(ctx, query)
}

// Name returns the source name
func (r *RateLimitedSource) Name() string {
	return r.name
}

var _ Source = (*RateLimitedSource)(nil)
