package weather

import (
	"fmt"
	"time"
)

// Location represents a logical place we request forecasts for.
// City/Country must be provided.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Query renders the location the way WeatherAPI expects it in the "q" parameter.
func (l Location) Query() string {
	if l.Country == "" {
		return l.City
	}
	return fmt.Sprintf("%s,%s", l.City, l.Country)
}

// ForecastDay holds the daily aggregates of a forecast day.
// A nil field means the upstream response did not carry the key.
type ForecastDay struct {
	MaxTempC      *float64 `json:"maxtemp_c"`
	MinTempC      *float64 `json:"mintemp_c"`
	AvgTempC      *float64 `json:"avgtemp_c"`
	AvgHumidity   *float64 `json:"avghumidity"`
	TotalPrecipMM *float64 `json:"totalprecip_mm"`
}

// HourSnapshot is a single hour of the forecast day. We only ever read noon.
type HourSnapshot struct {
	PressureMb *float64 `json:"pressure_mb"`
	Cloud      *float64 `json:"cloud"`
	WindDegree *float64 `json:"wind_degree"`
	WindKph    *float64 `json:"wind_kph"`
}

// Forecast is what a provider returns for one location and target date.
type Forecast struct {
	Location Location
	Date     time.Time
	Day      ForecastDay
	Noon     HourSnapshot
}
