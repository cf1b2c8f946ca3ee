package config

import (
	"ekata-api/pkg/llm"
	"ekata-api/pkg/weather"
)

// MustLoadLLM loads etc/llm.yaml from the project root and panics on error.
func MustLoadLLM() *llm.Config {
	return llm.MustLoad()
}

// MustLoadWeather loads etc/weather.yaml from the project root and panics on error.
func MustLoadWeather() *weather.Config {
	return weather.MustLoad()
}
