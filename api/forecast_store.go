package api

import (
	"sort"
	"sync"
	"time"

	"portal-widgets/collector"
	"portal-widgets/models"
)

// Snapshot is the latest forecast collected for a location
type Snapshot struct {
	Location models.Location `json:"location"`
	Forecast models.Forecast `json:"forecast"`
	Fresh    bool            `json:"fresh"`
	Updated  time.Time       `json:"updated"`
}

// ForecastStore holds the latest forecast of every polled location
type ForecastStore struct {
	data  map[string]Snapshot // key is the location name
	mutex sync.RWMutex
	now   func() time.Time
}

// NewForecastStore creates a new in-memory forecast store
func NewForecastStore() *ForecastStore {
	return &ForecastStore{
		data: make(map[string]Snapshot),
		now:  time.Now,
	}
}

// UpdateForecast stores the forecast delivered by an update
func (s *ForecastStore) UpdateForecast(u collector.Update) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[u.Location.Name()] = Snapshot{
		Location: u.Location,
		Forecast: u.Forecast,
		Fresh:    u.Fresh,
		Updated:  s.now(),
	}
}

// GetForecastByLocation retrieves the latest forecast for a location name
func (s *ForecastStore) GetForecastByLocation(location string) (Snapshot, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snapshot, exists := s.data[location]
	return snapshot, exists
}

// GetAllForecastLocations returns the sorted names of all locations with a forecast
func (s *ForecastStore) GetAllForecastLocations() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	locations := make([]string, 0, len(s.data))
	for loc := range s.data {
		locations = append(locations, loc)
	}
	sort.Strings(locations)
	return locations
}

// PruneOldForecasts removes forecasts older than the specified duration
func (s *ForecastStore) PruneOldForecasts(maxAge time.Duration) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-maxAge)
	prunedCount := 0

	for location, snapshot := range s.data {
		if snapshot.Updated.Before(cutoff) {
			delete(s.data, location)
			prunedCount++
		}
	}

	return prunedCount
}
