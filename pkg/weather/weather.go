package weather

import (
	"context"
	"errors"
)

var (
	// ErrFetchFailed wraps any failure to obtain current conditions.
	ErrFetchFailed = errors.New("weather: failed to fetch weather data")
	// ErrUnknownEstate is returned for names missing from the registry.
	ErrUnknownEstate = errors.New("weather: unknown estate")
)

// Conditions are the current readings at one location.
type Conditions struct {
	Temperature float64 `json:"temperature" msgpack:"t"` // °C
	Humidity    float64 `json:"humidity" msgpack:"h"`    // relative, %
	WindSpeed   float64 `json:"windSpeed" msgpack:"w"`   // km/h
	WeatherCode int     `json:"weatherCode" msgpack:"c"` // WMO code
	ObservedAt  string  `json:"observedAt,omitempty" msgpack:"o"`
}

// Provider returns current conditions for a coordinate pair.
type Provider interface {
	Current(ctx context.Context, lat, lon float64) (*Conditions, error)
}
