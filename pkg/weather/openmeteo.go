package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// ProviderOpenMeteo is the registry type of the Open-Meteo provider.
	ProviderOpenMeteo = "open-meteo"

	defaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"
	defaultTimeout      = 10 * time.Second
	currentFields       = "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code"
)

// OpenMeteo queries the public Open-Meteo forecast API.
type OpenMeteo struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures an OpenMeteo client.
type Option func(*OpenMeteo)

// WithBaseURL overrides the forecast endpoint.
func WithBaseURL(u string) Option {
	return func(o *OpenMeteo) {
		if u = strings.TrimSpace(u); u != "" {
			o.baseURL = u
		}
	}
}

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *OpenMeteo) {
		if hc != nil {
			o.httpClient = hc
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(o *OpenMeteo) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// NewOpenMeteo constructs a client with defaults.
func NewOpenMeteo(opts ...Option) *OpenMeteo {
	o := &OpenMeteo{
		baseURL:    defaultOpenMeteoURL,
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type openMeteoResponse struct {
	Current *struct {
		Time        string   `json:"time"`
		Temperature *float64 `json:"temperature_2m"`
		Humidity    *float64 `json:"relative_humidity_2m"`
		WindSpeed   *float64 `json:"wind_speed_10m"`
		WeatherCode *int     `json:"weather_code"`
	} `json:"current"`
}

// Current fetches the current readings. Every failure wraps ErrFetchFailed.
func (o *OpenMeteo) Current(ctx context.Context, lat, lon float64) (*Conditions, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.requestURL(lat, lon), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrFetchFailed, err)
	}
	cur := payload.Current
	if cur == nil || cur.Temperature == nil || cur.Humidity == nil || cur.WindSpeed == nil || cur.WeatherCode == nil {
		return nil, fmt.Errorf("%w: incomplete current block", ErrFetchFailed)
	}
	return &Conditions{
		Temperature: *cur.Temperature,
		Humidity:    *cur.Humidity,
		WindSpeed:   *cur.WindSpeed,
		WeatherCode: *cur.WeatherCode,
		ObservedAt:  cur.Time,
	}, nil
}

func (o *OpenMeteo) requestURL(lat, lon float64) string {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("current", currentFields)
	params.Set("timezone", "auto")
	return o.baseURL + "?" + params.Encode()
}
