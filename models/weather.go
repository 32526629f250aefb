package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Location identifies a place the weather widget can show
type Location struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label,omitempty"` // human label, e.g. a searched city name
}

// Name returns the label, or the coordinates when there is none
func (l Location) Name() string {
	if l.Label != "" {
		return l.Label
	}
	return fmt.Sprintf("%.4f,%.4f", l.Lat, l.Lon)
}

// DefaultLocation is the location shown before the user searches (Kraków)
var DefaultLocation = Location{Lat: 50.0647, Lon: 19.9450, Label: "Kraków"}

// HourlyPoint is a single 3-hour step on the temperature/precipitation chart
type HourlyPoint struct {
	Time     Timestamp `json:"dt"`
	Temp     *float64  `json:"temp"`      // in Celsius
	PrecipMM float64   `json:"precip_mm"` // rain + snow in mm
}

// Hourly is the payload returned by the portal's /weather/api/hourly endpoint
type Hourly struct {
	Points []HourlyPoint `json:"points"`
}

// Place is a single geocoding result
type Place struct {
	Name       string            `json:"name"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Country    string            `json:"country,omitempty"`
	LocalNames map[string]string `json:"local_names,omitempty"`
}

// DisplayName returns the place name in the given language, falling back to Name
func (p Place) DisplayName(lang string) string {
	if name, ok := p.LocalNames[lang]; ok && name != "" {
		return name
	}
	return p.Name
}

// Location converts the place into a Location labelled with its display name
func (p Place) Location(lang string) Location {
	return Location{Lat: p.Lat, Lon: p.Lon, Label: p.DisplayName(lang)}
}

// Timestamp decodes the hourly "dt" field, which the portal emits either as
// unix seconds or as an HTTP date string
type Timestamp struct {
	time.Time
}

// MarshalJSON encodes the timestamp as unix seconds
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

// UnmarshalJSON accepts unix seconds, RFC 3339 or RFC 1123 strings
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var secs int64
	if err := json.Unmarshal(data, &secs); err == nil {
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}
	for _, layout := range []string{time.RFC3339, time.RFC1123, time.RFC1123Z} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}
