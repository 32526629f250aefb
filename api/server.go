package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"portal-widgets/cache"

	"go.uber.org/zap"
)

// StatsProvider reports cache counters; *cache.ForecastCache implements it
type StatsProvider interface {
	Stats() cache.Stats
	Name() string
}

// Server exposes the collected forecasts and cache statistics of the daemon
type Server struct {
	forecastStore *ForecastStore
	stats         StatsProvider
	server        *http.Server
	logger        *zap.Logger
}

// NewServer creates a new status server listening on port
func NewServer(forecastStore *ForecastStore, stats StatsProvider, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	server := &Server{
		forecastStore: forecastStore,
		stats:         stats,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("/api/forecast/location/", server.handleGetForecastByLocation)
	mux.HandleFunc("/api/forecast/locations", server.handleGetAllLocations)
	mux.HandleFunc("/api/stats", server.handleStats)
	mux.HandleFunc("/api/health", server.handleHealthCheck)

	return server
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting status server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleGetForecastByLocation handles requests for the forecast of one location
func (s *Server) handleGetForecastByLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	location := strings.TrimPrefix(r.URL.Path, "/api/forecast/location/")
	if location == "" {
		http.Error(w, "Location not specified", http.StatusBadRequest)
		return
	}

	snapshot, exists := s.forecastStore.GetForecastByLocation(location)
	if !exists {
		s.writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("No forecast data found for location: %s", location),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, snapshot)
}

// handleGetAllLocations returns the names of all locations with a forecast
func (s *Server) handleGetAllLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	locations := s.forecastStore.GetAllForecastLocations()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"locations": locations,
		"count":     len(locations),
	})
}

// handleStats returns the cache hit/miss counters
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"source": s.stats.Name(),
		"cache":  s.stats.Stats(),
	})
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to write response", zap.Error(err))
	}
}
