package widget

import (
	"fmt"
	"math"
	"time"
)

var weekdays = [...]string{"niedziela", "poniedziałek", "wtorek", "środa", "czwartek", "piątek", "sobota"}

// month names in the genitive, as used in dates ("3 maja")
var months = [...]string{"stycznia", "lutego", "marca", "kwietnia", "maja", "czerwca",
	"lipca", "sierpnia", "września", "października", "listopada", "grudnia"}

// FormatToday renders the top bar date, e.g. "środa, 1 maja 2024"
func FormatToday(now time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", weekdays[now.Weekday()], now.Day(), months[now.Month()-1], now.Year())
}

// DayLabel names the forecast day at offset i from now: "Dziś", "Jutro", or a
// full date such as "piątek, 3 maja"
func DayLabel(i int, now time.Time) string {
	switch i {
	case 0:
		return "Dziś"
	case 1:
		return "Jutro"
	}
	target := now.AddDate(0, 0, i)
	return fmt.Sprintf("%s, %d %s", weekdays[target.Weekday()], target.Day(), months[target.Month()-1])
}

// StripLabel is the short name shown on a forecast strip card
func StripLabel(i int, date string) string {
	switch i {
	case 0:
		return "dzisiaj"
	case 1:
		return "jutro"
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return ""
	}
	return weekdays[d.Weekday()]
}

// ChartTitle is the caption above the temperature and precipitation chart
func ChartTitle(offset int, now time.Time) string {
	label := DayLabel(offset, now)
	switch offset {
	case 0:
		label = "dziś"
	case 1:
		label = "jutro"
	}
	return "Wykres temperatury i opadów – " + label
}

// TempLabel renders a temperature rounded to whole degrees, "--" when unknown
func TempLabel(t *float64, unit string) string {
	if t == nil {
		return "--" + unit
	}
	return fmt.Sprintf("%d%s", int(math.Round(*t)), unit)
}

// PressureLabel renders the pressure line of the day panel
func PressureLabel(p *float64) string {
	if p == nil {
		return "Ciśnienie: -- hPa"
	}
	return fmt.Sprintf("Ciśnienie: %d hPa", int(math.Round(*p)))
}

// PrecipLabel renders the precipitation line of the day panel
func PrecipLabel(mm *float64) string {
	if mm == nil {
		return "Opady: -- mm"
	}
	return fmt.Sprintf("Opady: %.1f mm", *mm)
}

// IconURL returns the OpenWeatherMap image of an icon code
func IconURL(code string) string {
	if code == "" {
		code = "01d"
	}
	return "https://openweathermap.org/img/wn/" + code + "@2x.png"
}
