package types

import (
	"encoding/json"

	"ekata-api/pkg/weather"
)

type GenerateRequest struct {
	Prompt          string          `json:"prompt"`
	Schema          json.RawMessage `json:"schema,omitempty"`
	UseGoogleSearch bool            `json:"useGoogleSearch"`
}

type RefreshResponse struct {
	Status string `json:"status"`
}

type EstatesResponse struct {
	Estates []weather.Estate `json:"estates"`
}

type WeatherRequest struct {
	Estate string `form:"estate"`
}

type WeatherResponse struct {
	Estate    string  `json:"estate"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	weather.Conditions
}

type HealthResponse struct {
	Status        string `json:"status"`
	LLMConfigured bool   `json:"llmConfigured"`
	Refreshing    bool   `json:"refreshing"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
