package weather

import (
	"context"
	"errors"
	"time"
)

// ErrDataUnavailable is returned (wrapped) for every kind of upstream failure:
// network errors, bad status codes, malformed or incomplete payloads.
var ErrDataUnavailable = errors.New("weather data unavailable")

// NoonHour is the index of the hourly entry used for pressure, cloud and wind.
const NoonHour = 12

// Provider abstracts a forecast source (e.g. WeatherAPI).
type Provider interface {
	Name() string
	FetchForecast(ctx context.Context, loc Location, date time.Time) (Forecast, error)
}
