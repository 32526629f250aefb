package cache

import (
	"fmt"
	"strings"
	"time"
)

// TTLs of the weather widget's cached data
const (
	ForecastTTL = 5 * time.Minute  // daily forecast strip
	HourlyTTL   = 30 * time.Second // hourly chart points
)

// coord normalizes a coordinate so nearby float renderings share a key
func coord(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	if s == "-0.0000" {
		s = "0.0000"
	}
	return s
}

// ForecastKey builds the cache key of a daily forecast. The label keeps
// forecasts looked up by place name apart from those looked up by
// coordinates, even when both resolve to the same point.
func ForecastKey(lat, lon float64, label string) string {
	key := "forecast:" + coord(lat) + "," + coord(lon)
	if label = strings.ToLower(strings.TrimSpace(label)); label != "" {
		key += "|" + label
	}
	return key
}

// HourlyKey builds the cache key of the hourly points of a given day offset
func HourlyKey(lat, lon float64, day int) string {
	return fmt.Sprintf("hourly:%s,%s:%d", coord(lat), coord(lon), day)
}
