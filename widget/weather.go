package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"portal-widgets/cache"
	"portal-widgets/datasource"
	"portal-widgets/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxChartOffset is the last day the chart navigation can move to
	MaxChartOffset = 6

	// StripDays is the number of cards on the forecast strip
	StripDays = 7

	// HourlyDays is the number of days that have hourly chart data; later
	// strip cards are disabled
	HourlyDays = datasource.MaxHourlyDay + 1

	// Language selects the local place names used as labels
	Language = "pl"
)

var (
	// ErrNoForecast is returned when the portal sends a forecast without days
	ErrNoForecast = errors.New("no forecast data")

	// ErrDayOutOfRange is returned when selecting a day the forecast does not have
	ErrDayOutOfRange = errors.New("day out of range")

	// ErrDayUnavailable is returned when selecting a day without hourly data
	ErrDayUnavailable = errors.New("hourly forecast not available for this day")
)

// Provider serves cached forecasts; *cache.ForecastCache implements it
type Provider interface {
	Forecast(ctx context.Context, loc models.Location, render cache.RenderFunc[models.Forecast]) (models.Forecast, bool, error)
	Hourly(ctx context.Context, loc models.Location, day int, render cache.RenderFunc[models.Hourly]) (models.Hourly, bool, error)
	Geocode(ctx context.Context, query string) ([]models.Place, error)
}

// Card is one day on the forecast strip
type Card struct {
	Index    int
	Label    string
	Max      string
	Min      string
	Icon     string
	Active   bool
	Disabled bool
}

// View is everything the weather page displays
type View struct {
	City        string
	Location    models.Location
	DayIndex    int
	DateLabel   string
	Temp        string
	Description string
	Pressure    string
	Precip      string
	Icon        string
	Strip       []Card
	ChartOffset int
	ChartTitle  string
	Hourly      models.Hourly
}

// RenderFunc is called with a new View whenever the state changes,
// including when a background refresh delivers newer data
type RenderFunc func(View)

// Weather holds the state of the weather page: the current location, the
// loaded forecast, the selected day and the chart day offset
type Weather struct {
	provider Provider
	logger   *zap.Logger
	now      func() time.Time

	mu          sync.Mutex
	render      RenderFunc
	location    models.Location
	city        string
	days        []models.Day
	selected    int
	chartOffset int
	hourly      models.Hourly

	// bumped whenever a background refresh lands, so a lookup started
	// earlier does not overwrite newer data with its stale copy
	forecastGen uint64
	hourlyGen   uint64
}

// Option configures a Weather
type Option func(*Weather)

// WithRender sets the callback receiving every new View
func WithRender(render RenderFunc) Option {
	return func(w *Weather) {
		w.render = render
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Weather) {
		w.logger = logger
	}
}

// WithClock replaces time.Now for date labels
func WithClock(now func() time.Time) Option {
	return func(w *Weather) {
		w.now = now
	}
}

// NewWeather creates the page state, positioned on the default location
func NewWeather(provider Provider, opts ...Option) *Weather {
	w := &Weather{
		provider: provider,
		logger:   zap.NewNop(),
		now:      time.Now,
		location: models.DefaultLocation,
		city:     models.DefaultLocation.Label,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// LoadDefault loads the forecast of the default location
func (w *Weather) LoadDefault(ctx context.Context) error {
	return w.load(ctx, models.DefaultLocation)
}

// LoadCoords loads the forecast for the given coordinates. A non-empty
// label is shown instead of the city name the portal reports.
func (w *Weather) LoadCoords(ctx context.Context, lat, lon float64, label string) error {
	return w.load(ctx, models.Location{Lat: lat, Lon: lon, Label: strings.TrimSpace(label)})
}

// LoadCity geocodes name and loads the forecast of the best match
func (w *Weather) LoadCity(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return datasource.ErrEmptyQuery
	}

	places, err := w.provider.Geocode(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to geocode %q: %w", name, err)
	}
	if len(places) == 0 {
		return fmt.Errorf("%w: %s", datasource.ErrLocationNotFound, name)
	}

	return w.load(ctx, places[0].Location(Language))
}

func (w *Weather) load(ctx context.Context, loc models.Location) error {
	w.mu.Lock()
	w.location = loc
	w.chartOffset = 0
	w.selected = 0
	w.mu.Unlock()

	w.logger.Debug("Loading forecast",
		zap.Float64("lat", loc.Lat), zap.Float64("lon", loc.Lon), zap.String("label", loc.Label))

	return w.Refresh(ctx)
}

// Refresh reloads the forecast and the chart of the current location
// concurrently and renders the result
func (w *Weather) Refresh(ctx context.Context) error {
	w.mu.Lock()
	loc, offset := w.location, w.chartOffset
	forecastGen, hourlyGen := w.forecastGen, w.hourlyGen
	w.mu.Unlock()

	var forecast models.Forecast
	var hourly models.Hourly

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, _, err := w.provider.Forecast(gctx, loc, w.forecastRefreshed(loc))
		if err != nil {
			return err
		}
		if len(f.Days) == 0 {
			return ErrNoForecast
		}
		forecast = f
		return nil
	})
	g.Go(func() error {
		h, _, err := w.provider.Hourly(gctx, loc, offset, w.hourlyRefreshed(loc, offset))
		if err != nil {
			return err
		}
		hourly = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load forecast: %w", err)
	}

	w.mu.Lock()
	if w.location != loc {
		// a newer load replaced the location while this one was in flight
		w.mu.Unlock()
		return nil
	}
	if w.forecastGen == forecastGen {
		w.applyForecast(forecast)
	}
	if w.chartOffset == offset && w.hourlyGen == hourlyGen {
		w.hourly = hourly
	}
	view := w.viewLocked()
	w.mu.Unlock()

	w.emit(view)
	return nil
}

// forecastRefreshed updates the state when a background refresh of loc
// lands, keeping the selected day and chart offset
func (w *Weather) forecastRefreshed(loc models.Location) cache.RenderFunc[models.Forecast] {
	return func(f models.Forecast) {
		w.mu.Lock()
		if w.location != loc || len(f.Days) == 0 {
			w.mu.Unlock()
			return
		}
		w.applyForecast(f)
		w.forecastGen++
		view := w.viewLocked()
		w.mu.Unlock()

		w.logger.Debug("Forecast refreshed in background", zap.String("city", f.City))
		w.emit(view)
	}
}

func (w *Weather) hourlyRefreshed(loc models.Location, offset int) cache.RenderFunc[models.Hourly] {
	return func(h models.Hourly) {
		w.mu.Lock()
		if w.location != loc || w.chartOffset != offset {
			w.mu.Unlock()
			return
		}
		w.hourly = h
		w.hourlyGen++
		view := w.viewLocked()
		w.mu.Unlock()

		w.emit(view)
	}
}

// applyForecast must be called with mu held
func (w *Weather) applyForecast(f models.Forecast) {
	w.days = f.Days
	if w.selected >= len(w.days) {
		w.selected = 0
	}

	switch {
	case w.location.Label != "":
		w.city = w.location.Label
	case f.City != "":
		w.city = f.City
	default:
		w.city = "Lokalizacja"
	}
}

// SelectDay shows day i in the day panel and moves the chart to it
func (w *Weather) SelectDay(ctx context.Context, i int) (models.Day, error) {
	w.mu.Lock()
	if i < 0 || i >= len(w.days) {
		w.mu.Unlock()
		return models.Day{}, fmt.Errorf("%w: %d", ErrDayOutOfRange, i)
	}
	if i >= HourlyDays {
		w.mu.Unlock()
		return models.Day{}, fmt.Errorf("%w: %d", ErrDayUnavailable, i)
	}
	w.selected = i
	w.chartOffset = i
	day := w.days[i]
	w.mu.Unlock()

	if _, err := w.Chart(ctx); err != nil {
		return day, err
	}
	return day, nil
}

// NextChartDay moves the chart one day forward; it reports false when
// already on the last day
func (w *Weather) NextChartDay(ctx context.Context) (bool, error) {
	return w.moveChart(ctx, 1)
}

// PrevChartDay moves the chart one day back; it reports false on today
func (w *Weather) PrevChartDay(ctx context.Context) (bool, error) {
	return w.moveChart(ctx, -1)
}

func (w *Weather) moveChart(ctx context.Context, delta int) (bool, error) {
	w.mu.Lock()
	next := w.chartOffset + delta
	if next < 0 || next > MaxChartOffset {
		w.mu.Unlock()
		return false, nil
	}
	w.chartOffset = next
	w.mu.Unlock()

	_, err := w.Chart(ctx)
	return true, err
}

// Chart fetches the hourly points of the current chart day and renders them
func (w *Weather) Chart(ctx context.Context) (models.Hourly, error) {
	w.mu.Lock()
	loc, offset, gen := w.location, w.chartOffset, w.hourlyGen
	w.mu.Unlock()

	hourly, _, err := w.provider.Hourly(ctx, loc, offset, w.hourlyRefreshed(loc, offset))
	if err != nil {
		return models.Hourly{}, fmt.Errorf("failed to load chart: %w", err)
	}

	w.mu.Lock()
	if w.location != loc || w.chartOffset != offset || w.hourlyGen != gen {
		w.mu.Unlock()
		return hourly, nil
	}
	w.hourly = hourly
	view := w.viewLocked()
	w.mu.Unlock()

	w.emit(view)
	return hourly, nil
}

// ChartOffset returns the day the chart shows (0 = today)
func (w *Weather) ChartOffset() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chartOffset
}

// Location returns the location currently shown
func (w *Weather) Location() models.Location {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.location
}

// View returns a snapshot of the current page
func (w *Weather) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Weather) viewLocked() View {
	now := w.now()
	v := View{
		City:        w.city,
		Location:    w.location,
		DayIndex:    w.selected,
		DateLabel:   DayLabel(w.selected, now),
		ChartOffset: w.chartOffset,
		ChartTitle:  ChartTitle(w.chartOffset, now),
		Hourly:      w.hourly,
	}

	if w.selected < len(w.days) {
		day := w.days[w.selected]
		v.Temp = TempLabel(day.TMax, "°C")
		v.Description = day.Description
		v.Pressure = PressureLabel(day.Pressure)
		v.Precip = PrecipLabel(day.PrecipMM)
		if day.Icon != "" {
			v.Icon = IconURL(day.Icon)
		}
	}

	for i, day := range w.days {
		if i == StripDays {
			break
		}
		card := Card{
			Index:    i,
			Label:    StripLabel(i, day.Date),
			Max:      TempLabel(day.TMax, "°"),
			Min:      TempLabel(day.TMin, "°"),
			Active:   i == w.chartOffset,
			Disabled: i >= HourlyDays,
		}
		if day.Icon != "" {
			card.Icon = IconURL(day.Icon)
		}
		v.Strip = append(v.Strip, card)
	}
	return v
}

func (w *Weather) emit(v View) {
	if w.render != nil {
		w.render(v)
	}
}
