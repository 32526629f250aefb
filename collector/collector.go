package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"portal-widgets/cache"
	"portal-widgets/models"

	"go.uber.org/zap"
)

// DefaultInterval is how often each location is polled
const DefaultInterval = 5 * time.Minute

// ForecastProvider serves cached forecasts; *cache.ForecastCache implements it
type ForecastProvider interface {
	Forecast(ctx context.Context, loc models.Location, render cache.RenderFunc[models.Forecast]) (models.Forecast, bool, error)
	Name() string
}

// Update is a forecast delivered for one location. Fresh is false when the
// value came from the cache and a background refresh is pending; the
// refreshed value arrives as a later Update with Fresh set.
type Update struct {
	Location models.Location
	Forecast models.Forecast
	Fresh    bool
}

// Refresher periodically polls the forecasts of a set of locations
type Refresher struct {
	provider     ForecastProvider
	locations    []models.Location
	outputChan   chan Update
	errorChan    chan error
	interval     time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewRefresher creates a refresher for the given locations
func NewRefresher(provider ForecastProvider, locations []models.Location, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		provider:     provider,
		locations:    locations,
		outputChan:   make(chan Update, 100),
		errorChan:    make(chan error, 100),
		interval:     DefaultInterval,
		fetchTimeout: 10 * time.Second,
		logger:       logger,
	}
}

// SetInterval changes how often each location is polled
func (r *Refresher) SetInterval(interval time.Duration) {
	r.interval = interval
}

// SetFetchTimeout changes the timeout of a single forecast lookup
func (r *Refresher) SetFetchTimeout(timeout time.Duration) {
	r.fetchTimeout = timeout
}

// OutputChannel returns the channel that emits forecast updates
func (r *Refresher) OutputChannel() <-chan Update {
	return r.outputChan
}

// ErrorChannel returns the channel that emits errors
func (r *Refresher) ErrorChannel() <-chan error {
	return r.errorChan
}

// Start begins polling every location.
// The returned function stops polling and closes both channels.
func (r *Refresher) Start(ctx context.Context) func() {
	pollCtx, cancelPolling := context.WithCancel(ctx)

	var wg sync.WaitGroup
	for _, loc := range r.locations {
		wg.Add(1)
		go r.poll(pollCtx, &wg, loc)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		r.mu.Lock()
		r.closed = true
		close(r.outputChan)
		close(r.errorChan)
		r.mu.Unlock()
		close(done)
	}()

	return func() {
		cancelPolling()
		<-done
	}
}

// poll fetches the forecast of a location on every tick
func (r *Refresher) poll(ctx context.Context, wg *sync.WaitGroup, loc models.Location) {
	defer wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.fetchOnce(ctx, loc)

	for {
		select {
		case <-ticker.C:
			r.fetchOnce(ctx, loc)
		case <-ctx.Done():
			return
		}
	}
}

func (r *Refresher) fetchOnce(ctx context.Context, loc models.Location) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	forecast, fresh, err := r.provider.Forecast(fetchCtx, loc, func(f models.Forecast) {
		r.emitRefreshed(Update{Location: loc, Forecast: f, Fresh: true})
	})
	if err != nil {
		select {
		case r.errorChan <- fmt.Errorf("error fetching from %s for %s: %w", r.provider.Name(), loc.Name(), err):
		default:
			r.logger.Warn("Error channel full, dropping error", zap.Error(err))
		}
		return
	}

	select {
	case r.outputChan <- Update{Location: loc, Forecast: forecast, Fresh: fresh}:
	case <-ctx.Done():
	}
}

// emitRefreshed delivers the result of a background refresh. It may run
// after polling stopped, so it never blocks and never sends on closed channels.
func (r *Refresher) emitRefreshed(u Update) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.outputChan <- u:
	default:
		r.logger.Warn("Output channel full, dropping refreshed forecast", zap.String("location", u.Location.Name()))
	}
}
