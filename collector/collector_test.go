package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"portal-widgets/cache"
	"portal-widgets/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeProvider struct {
	mu      sync.Mutex
	fresh   bool
	err     error
	renders []cache.RenderFunc[models.Forecast]
	calls   int

	// refreshInline calls render before returning, like a background refresh that lands at once
	refreshInline bool
}

func (p *fakeProvider) Forecast(_ context.Context, loc models.Location, render cache.RenderFunc[models.Forecast]) (models.Forecast, bool, error) {
	p.mu.Lock()
	p.calls++
	p.renders = append(p.renders, render)
	fresh, err, inline := p.fresh, p.err, p.refreshInline
	p.mu.Unlock()

	if err != nil {
		return models.Forecast{}, false, err
	}
	f := models.Forecast{City: loc.Label, Lat: loc.Lat, Lon: loc.Lon}
	if inline {
		render(f)
	}
	return f, fresh, nil
}

func (p *fakeProvider) Name() string { return "Fake [Cached]" }

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var testLocations = []models.Location{
	models.DefaultLocation,
	{Lat: 52.2297, Lon: 21.0122, Label: "Warszawa"},
}

func receive(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.True(t, ok, "output channel closed")
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an update")
		return Update{}
	}
}

func TestRefresher_EmitsUpdates(t *testing.T) {
	p := &fakeProvider{fresh: true}
	r := NewRefresher(p, testLocations, zaptest.NewLogger(t))

	stop := r.Start(context.Background())

	cities := map[string]bool{}
	for range testLocations {
		u := receive(t, r.OutputChannel())
		assert.True(t, u.Fresh)
		assert.Equal(t, u.Location.Label, u.Forecast.City)
		cities[u.Forecast.City] = true
	}
	assert.Equal(t, map[string]bool{"Kraków": true, "Warszawa": true}, cities)

	stop()

	for range r.OutputChannel() {
	}
	_, open := <-r.ErrorChannel()
	assert.False(t, open)
}

func TestRefresher_PollsOnInterval(t *testing.T) {
	p := &fakeProvider{fresh: true}
	r := NewRefresher(p, testLocations[:1], zaptest.NewLogger(t))
	r.SetInterval(10 * time.Millisecond)

	stop := r.Start(context.Background())
	defer stop()

	for i := 0; i < 3; i++ {
		receive(t, r.OutputChannel())
	}
	assert.GreaterOrEqual(t, p.callCount(), 3)
}

func TestRefresher_ReportsErrors(t *testing.T) {
	errDown := errors.New("portal down")
	p := &fakeProvider{err: errDown}
	r := NewRefresher(p, testLocations[:1], zaptest.NewLogger(t))

	stop := r.Start(context.Background())
	defer stop()

	select {
	case err := <-r.ErrorChannel():
		assert.ErrorIs(t, err, errDown)
		assert.Contains(t, err.Error(), "Fake [Cached]")
		assert.Contains(t, err.Error(), "Kraków")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an error")
	}
}

func TestRefresher_ForwardsBackgroundRefresh(t *testing.T) {
	p := &fakeProvider{fresh: false, refreshInline: true}
	r := NewRefresher(p, testLocations[:1], zaptest.NewLogger(t))

	stop := r.Start(context.Background())
	defer stop()

	first := receive(t, r.OutputChannel())
	second := receive(t, r.OutputChannel())

	assert.True(t, first.Fresh, "the refreshed value is emitted from the render callback")
	assert.False(t, second.Fresh, "the cached value is emitted once the lookup returns")
}

func TestRefresher_RefreshAfterStopIsDropped(t *testing.T) {
	p := &fakeProvider{fresh: false}
	r := NewRefresher(p, testLocations[:1], zaptest.NewLogger(t))

	stop := r.Start(context.Background())
	receive(t, r.OutputChannel())
	stop()

	p.mu.Lock()
	render := p.renders[0]
	p.mu.Unlock()

	assert.NotPanics(t, func() { render(models.Forecast{City: "late"}) })
}
