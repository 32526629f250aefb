package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portal-widgets/api"
	"portal-widgets/cache"
	"portal-widgets/collector"
	"portal-widgets/config"
	"portal-widgets/currency"
	"portal-widgets/datasource"
	"portal-widgets/models"
	"portal-widgets/widget"

	"go.uber.org/zap"
)

func main() {
	// Parse command line arguments
	envFile := flag.String("env", "", "Path to .env file")
	portalURL := flag.String("portal", "", "Portal base URL (overrides PORTAL_URL)")
	updateInterval := flag.Duration("update", 0, "Forecast refresh interval (overrides WEATHER_REFRESH_INTERVAL)")
	ratesFile := flag.String("rates", "", "Path to currency rates JSON (overrides CALC_RATES_FILE)")
	port := flag.Int("port", -1, "Port of the status server, 0 disables it (overrides STATUS_PORT)")
	enableRateLimiting := flag.Bool("rate-limit", true, "Enable portal rate limiting")
	flag.Parse()

	cfg, err := config.Load(nil, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *portalURL != "" {
		cfg.Portal.URL = *portalURL
	}
	if *updateInterval > 0 {
		cfg.Weather.RefreshInterval = *updateInterval
	}
	if *ratesFile != "" {
		cfg.Calculator.RatesFile = *ratesFile
	}
	if *port >= 0 {
		cfg.StatusPort = *port
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	logRates(cfg, logger)

	var source datasource.Source = datasource.NewPortalClient(cfg.Portal.URL,
		datasource.WithTimeout(cfg.Portal.Timeout),
		datasource.WithLogger(logger.Named("portal")),
	)
	if *enableRateLimiting {
		source = datasource.NewRateLimitedSource(source, cfg.Portal.RequestsPerSecond, cfg.Portal.Burst)
		logger.Info("Applied rate limiting to portal client",
			zap.Float64("rps", cfg.Portal.RequestsPerSecond), zap.Int("burst", cfg.Portal.Burst))
	}

	store, closeStore, err := cache.OpenStore(ctx, cfg.Cache.RedisURL,
		cache.WithPrefix(cfg.Cache.RedisPrefix),
		cache.WithRetention(cfg.Cache.RedisRetention),
	)
	if err != nil {
		logger.Fatal("Failed to open cache store", zap.Error(err))
	}
	defer closeStore()

	forecasts := cache.NewForecastCache(source, store,
		cache.WithLogger(logger.Named("cache")),
		cache.WithForecastTTL(cfg.Cache.ForecastTTL),
		cache.WithHourlyTTL(cfg.Cache.HourlyTTL),
	)
	logger.Info("Weather source ready", zap.String("source", forecasts.Name()), zap.Bool("redis", cfg.Cache.RedisURL != ""))

	locations := resolveLocations(ctx, forecasts, cfg.Weather.Locations, logger)

	refresher := collector.NewRefresher(forecasts, locations, logger.Named("refresher"))
	refresher.SetInterval(cfg.Weather.RefreshInterval)
	refresher.SetFetchTimeout(cfg.Weather.FetchTimeout)
	stopRefresher := refresher.Start(ctx)

	forecastStore := api.NewForecastStore()
	done := make(chan struct{})
	go func() {
		defer close(done)
		consume(refresher, forecastStore, logger)
	}()

	var server *api.Server
	if cfg.StatusPort > 0 {
		server = api.NewServer(forecastStore, forecasts, cfg.StatusPort, logger.Named("api"))
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("Status server stopped", zap.Error(err))
			}
		}()
	}

	// Periodically clean up forecasts of locations that stopped updating
	forecastPruneAge := 48 * time.Hour
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := forecastStore.PruneOldForecasts(forecastPruneAge); n > 0 {
					logger.Info("Pruned old forecasts", zap.Int("count", n))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Wait for shutdown signal
	sig := <-shutdownChan
	logger.Info("Shutting down", zap.String("signal", sig.String()))

	if server != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Status server shutdown failed", zap.Error(err))
		}
		cancelShutdown()
	}

	cancel()
	stopRefresher()
	<-done
	forecasts.Wait()

	stats := forecasts.Stats()
	logger.Info("Shutdown complete",
		zap.Int("hits", stats.Hits), zap.Int("misses", stats.Misses), zap.Int("refreshFailures", stats.RefreshFailures))
}

// resolveLocations geocodes the configured place names; unknown places are
// skipped and an empty result falls back to the default location
func resolveLocations(ctx context.Context, geocoder datasource.Geocoder, names []string, logger *zap.Logger) []models.Location {
	var locations []models.Location
	for _, name := range names {
		places, err := geocoder.Geocode(ctx, name)
		if err == nil && len(places) == 0 {
			err = datasource.ErrLocationNotFound
		}
		if err != nil {
			logger.Warn("Skipping location", zap.String("name", name), zap.Error(err))
			continue
		}
		locations = append(locations, places[0].Location(widget.Language))
	}
	if len(locations) == 0 {
		locations = append(locations, models.DefaultLocation)
	}
	return locations
}

// consume stores and logs every forecast update until the refresher stops
func consume(refresher *collector.Refresher, store *api.ForecastStore, logger *zap.Logger) {
	updates, errs := refresher.OutputChannel(), refresher.ErrorChannel()
	for updates != nil || errs != nil {
		select {
		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			store.UpdateForecast(u)
			fields := []zap.Field{zap.String("city", u.Forecast.City), zap.Bool("fresh", u.Fresh)}
			if today, ok := u.Forecast.Today(); ok {
				fields = append(fields,
					zap.String("temp", widget.TempLabel(today.TMax, "°C")),
					zap.String("description", today.Description),
				)
			}
			logger.Info("Forecast updated", fields...)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			var apiErr *datasource.APIError
			if errors.As(err, &apiErr) {
				logger.Warn("Portal rejected forecast request", zap.Int("status", apiErr.StatusCode), zap.Error(err))
				continue
			}
			logger.Warn("Forecast update failed", zap.Error(err))
		}
	}
}

// logRates logs what 100 units of every configured currency are worth in
// the base currency, the same table the exchange widget shows
func logRates(cfg *config.AppConfig, logger *zap.Logger) {
	rates, err := currency.LoadRatesFile(cfg.Calculator.RatesFile)
	if err != nil {
		logger.Warn("Currency rates not loaded", zap.String("file", cfg.Calculator.RatesFile), zap.Error(err))
		return
	}

	conv := currency.NewConverter(rates, currency.WithMaxAmount(cfg.Calculator.MaxAmount))
	for _, code := range rates.Codes() {
		if code == currency.Base {
			continue
		}
		logger.Info("Exchange rate",
			zap.String("code", code.String()),
			zap.String("100", conv.Convert("100", code, currency.Base)),
		)
	}
}
