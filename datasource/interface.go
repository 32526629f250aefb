package datasource

import (
	"context"

	"portal-widgets/models"
)

// ForecastSource fetches the daily forecast strip for a location
type ForecastSource interface {
	// FetchForecast fetches the daily forecast; a non-empty label replaces the city name
	FetchForecast(ctx context.Context, loc models.Location) (models.Forecast, error)

	// Name returns the source's name
	Name() string
}

// HourlySource fetches the 3-hour chart points of a day
type HourlySource interface {
	// FetchHourly fetches the points of day (0 = today)
	FetchHourly(ctx context.Context, loc models.Location, day int) (models.Hourly, error)

	// Name returns the source's name
	Name() string
}

// Geocoder resolves a place name to coordinates
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]models.Place, error)
}

// Source combines every endpoint the weather widget consumes
type Source interface {
	ForecastSource
	HourlySource
	Geocoder
}
