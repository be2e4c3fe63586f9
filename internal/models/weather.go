package models

import "time"

// Condition is the service's weather classification for a reading
type Condition struct {
	Icon        string // e.g., "01d", "10n"
	Description string // e.g., "Light rain"
}

// Temperature holds current and derived temperatures in the requested units
type Temperature struct {
	Current   float64
	FeelsLike float64
	Min       float64
	Max       float64
}

// Details holds the secondary observation values
type Details struct {
	Humidity   int     // percent
	WindSpeed  float64 // m/s (metric) or mph (imperial)
	WindDeg    int     // degrees, 0 if not reported
	Pressure   int     // hPa
	Visibility float64 // km (metric) or mi (imperial)
	Cloudiness int     // percent
}

// WeatherSnapshot is a complete current-conditions observation.
// It is only ever built from a fully decoded primary response.
type WeatherSnapshot struct {
	City        string
	Country     string
	Temperature Temperature
	Condition   Condition
	Details     Details
	Sunrise     time.Time // zero if not reported
	Sunset      time.Time // zero if not reported
	Units       UnitSystem
	AsOf        time.Time
}

// ForecastEntry is a single forecast slot
type ForecastEntry struct {
	Time        time.Time
	Temperature float64
	FeelsLike   float64
	Condition   Condition
	Humidity    int
	WindSpeed   float64
}

// Location returns the snapshot's location as reported by the service
func (s WeatherSnapshot) Location() LocationRef {
	return LocationRef{Name: s.City, Region: s.Country}
}
