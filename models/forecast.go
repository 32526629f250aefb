package models

// Forecast is the daily forecast payload returned by the portal's
// /weather/api/forecast endpoint
type Forecast struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Days []Day   `json:"days"`
}

// Day represents a single day of the forecast strip
type Day struct {
	Timestamp   int64    `json:"timestamp,omitempty"` // unix seconds, UTC
	Date        string   `json:"date"`                // local date, YYYY-MM-DD
	TMin        *float64 `json:"t_min"`               // in Celsius
	TMax        *float64 `json:"t_max"`               // in Celsius
	TDay        *float64 `json:"t_day,omitempty"`     // in Celsius
	Pressure    *float64 `json:"pressure"`            // in hPa
	PrecipMM    *float64 `json:"precip_mm"`           // rain in mm
	Icon        string   `json:"icon"`                // icon code
	Description string   `json:"description"`         // short text description
}

// Today returns the first day of the forecast, if any
func (f Forecast) Today() (Day, bool) {
	if len(f.Days) == 0 {
		return Day{}, false
	}
	return f.Days[0], true
}
