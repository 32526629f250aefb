package cache

import (
	"context"
	"time"

	"portal-widgets/datasource"
	"portal-widgets/models"
)

// ForecastCache wraps a weather Source with stale-while-revalidate caching of
// the daily forecast and the hourly chart points. Geocoding is not cached.
type ForecastCache struct {
	source      datasource.Source
	forecasts   *Cache[models.Forecast]
	hourly      *Cache[models.Hourly]
	forecastTTL time.Duration
	hourlyTTL   time.Duration
}

// NewForecastCache creates a cached wrapper around source, keeping entries in store
func NewForecastCache(source datasource.Source, store Store, opts ...Option) *ForecastCache {
	o := newOptions(opts)
	return &ForecastCache{
		source:      source,
		forecasts:   New[models.Forecast]("forecast", store, opts...),
		hourly:      New[models.Hourly]("hourly", store, opts...),
		forecastTTL: o.forecastTTL,
		hourlyTTL:   o.hourlyTTL,
	}
}

// Name returns the name of the underlying source with [Cached] suffix
func (c *ForecastCache) Name() string {
	return c.source.Name() + " [Cached]"
}

// Forecast returns the daily forecast for loc. A cached value is returned
// with fresh=false and render is called again once the background refresh
// lands.
func (c *ForecastCache) Forecast(ctx context.Context, loc models.Location, render RenderFunc[models.Forecast]) (models.Forecast, bool, error) {
	key := ForecastKey(loc.Lat, loc.Lon, loc.Label)
	return c.forecasts.Get(ctx, key, c.forecastTTL, func(ctx context.Context) (models.Forecast, error) {
		return c.source.FetchForecast(ctx, loc)
	}, render)
}

// Hourly returns the chart points of the given day offset for loc
func (c *ForecastCache) Hourly(ctx context.Context, loc models.Location, day int, render RenderFunc[models.Hourly]) (models.Hourly, bool, error) {
	day = datasource.ClampDay(day)
	key := HourlyKey(loc.Lat, loc.Lon, day)
	return c.hourly.Get(ctx, key, c.hourlyTTL, func(ctx context.Context) (models.Hourly, error) {
		return c.source.FetchHourly(ctx, loc, day)
	}, render)
}

// Geocode resolves a place name through the underlying source
func (c *ForecastCache) Geocode(ctx context.Context, query string) ([]models.Place, error) {
	return c.source.Geocode(ctx, query)
}

// Wait blocks until every background refresh started so far has finished
func (c *ForecastCache) Wait() {
	c.forecasts.Wait()
	c.hourly.Wait()
}

// Stats returns the combined counters of the forecast and hourly caches
func (c *ForecastCache) Stats() Stats {
	f, h := c.forecasts.Stats(), c.hourly.Stats()
	return Stats{
		Hits:            f.Hits + h.Hits,
		Misses:          f.Misses + h.Misses,
		RefreshFailures: f.RefreshFailures + h.RefreshFailures,
	}
}
