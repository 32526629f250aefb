package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"portal-widgets/cache"
	"portal-widgets/config"
	"portal-widgets/datasource"
	"portal-widgets/widget"

	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", "", "Path to .env file")
	city := flag.String("city", "", "City to look up (geocoded through the portal)")
	lat := flag.Float64("lat", 0, "Latitude, used with -lon instead of -city")
	lon := flag.Float64("lon", 0, "Longitude, used with -lat instead of -city")
	label := flag.String("label", "", "Label shown for coordinates")
	day := flag.Int("day", 0, "Chart day offset (0 = today)")
	flag.Parse()

	cfg, err := config.Load(nil, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Portal.Timeout)
	defer cancel()

	store, closeStore, err := cache.OpenStore(ctx, cfg.Cache.RedisURL,
		cache.WithPrefix(cfg.Cache.RedisPrefix),
		cache.WithRetention(cfg.Cache.RedisRetention),
	)
	if err != nil {
		logger.Fatal("Failed to open cache store", zap.Error(err))
	}
	defer closeStore()

	client := datasource.NewPortalClient(cfg.Portal.URL,
		datasource.WithTimeout(cfg.Portal.Timeout),
		datasource.WithLogger(logger.Named("portal")),
	)
	forecasts := cache.NewForecastCache(client, store,
		cache.WithLogger(logger.Named("cache")),
		cache.WithForecastTTL(cfg.Cache.ForecastTTL),
		cache.WithHourlyTTL(cfg.Cache.HourlyTTL),
	)

	weather := widget.NewWeather(forecasts,
		widget.WithLogger(logger),
		widget.WithRender(func(v widget.View) { printView(os.Stdout, v) }),
	)

	load := func() error {
		switch {
		case *city != "":
			return weather.LoadCity(ctx, *city)
		case *lat != 0 || *lon != 0:
			return weather.LoadCoords(ctx, *lat, *lon, *label)
		default:
			return weather.LoadDefault(ctx)
		}
	}

	fmt.Println("*** First lookup - cache miss unless the store already holds it ***")
	if err := load(); err != nil {
		logger.Fatal("Failed to load forecast", zap.Error(err))
	}
	if *day > 0 {
		if _, err := weather.SelectDay(ctx, *day); err != nil {
			logger.Warn("Cannot select day", zap.Int("day", *day), zap.Error(err))
		}
	}

	fmt.Println("\n*** Second lookup - served from cache, refreshed in the background ***")
	if err := weather.Refresh(ctx); err != nil {
		logger.Fatal("Failed to refresh forecast", zap.Error(err))
	}

	forecasts.Wait()

	stats := forecasts.Stats()
	fmt.Printf("\nStats for %s: %d cache hits, %d cache misses, %d failed refreshes\n",
		forecasts.Name(), stats.Hits, stats.Misses, stats.RefreshFailures)
}

func printView(out io.Writer, v widget.View) {
	fmt.Fprintf(out, "\n%s (%.4f, %.4f) - %s\n", v.City, v.Location.Lat, v.Location.Lon, v.DateLabel)
	fmt.Fprintf(out, "  %s %s\n  %s\n  %s\n", v.Temp, v.Description, v.Pressure, v.Precip)

	cards := make([]string, len(v.Strip))
	for i, c := range v.Strip {
		mark := " "
		if c.Active {
			mark = "*"
		}
		cards[i] = fmt.Sprintf("%s%s %s/%s", mark, c.Label, c.Max, c.Min)
	}
	fmt.Fprintf(out, "  %s\n", strings.Join(cards, " |"))

	fmt.Fprintf(out, "  %s\n", v.ChartTitle)
	for _, p := range v.Hourly.Points {
		fmt.Fprintf(out, "    %s  %s  %.1f mm\n",
			p.Time.Local().Format("15:04"), widget.TempLabel(p.Temp, "°C"), p.PrecipMM)
	}
}

