package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/rainfall-prediction/internal/weather"
)

// DefaultWeatherAPIBaseURL is the public WeatherAPI.com endpoint root.
const DefaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1"

// WeatherAPIOptions tunes the outbound behaviour of the WeatherAPI provider.
type WeatherAPIOptions struct {
	BaseURL    string
	RPS        float64 // <= 0 disables rate limiting
	Burst      int
	MaxRetries int
}

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts WeatherAPIOptions) *WeatherAPIProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         "weatherapi",
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: countsAsSuccess,
	})

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultWeatherAPIBaseURL
	}

	var limiter *rate.Limiter
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURL + "/forecast.json",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      opts.MaxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
			Limiter: limiter,
		},
		circuit: cb,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// forecastPayload mirrors the subset of forecast.json we read. Numeric leaves are
// pointers so that absent keys can be told apart from zero values.
type forecastPayload struct {
	Forecast *struct {
		ForecastDay []struct {
			Date string                 `json:"date"`
			Day  *weather.ForecastDay   `json:"day"`
			Hour []weather.HourSnapshot `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// FetchForecast returns the forecast day and noon hour for loc on date.
// Every failure wraps weather.ErrDataUnavailable.
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, loc weather.Location, date time.Time) (weather.Forecast, error) {
	if p.apiKey == "" {
		return weather.Forecast{}, fmt.Errorf("%w: weatherapi api key is not configured", weather.ErrDataUnavailable)
	}

	dt := date.Format("2006-01-02")
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", loc.Query())
		values.Set("dt", dt)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Forecast{}, fmt.Errorf("%w: %s %s: %v", weather.ErrDataUnavailable, p.name, loc.Key(), err)
	}
	defer resp.Body.Close()

	var payload forecastPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Forecast{}, fmt.Errorf("%w: decode %s response: %v", weather.ErrDataUnavailable, p.name, err)
	}

	if payload.Forecast == nil || len(payload.Forecast.ForecastDay) == 0 {
		return weather.Forecast{}, fmt.Errorf("%w: response has no forecast day for %s", weather.ErrDataUnavailable, dt)
	}
	fd := payload.Forecast.ForecastDay[0]
	if fd.Day == nil {
		return weather.Forecast{}, fmt.Errorf("%w: forecast day %s has no daily aggregates", weather.ErrDataUnavailable, dt)
	}
	if len(fd.Hour) <= weather.NoonHour {
		return weather.Forecast{}, fmt.Errorf("%w: forecast day %s has %d hourly entries, need noon", weather.ErrDataUnavailable, dt, len(fd.Hour))
	}

	return weather.Forecast{
		Location: loc,
		Date:     date,
		Day:      *fd.Day,
		Noon:     fd.Hour[weather.NoonHour],
	}, nil
}
