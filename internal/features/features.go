// Package features turns forecast records into the fixed, ordered feature vector
// the rainfall classifier was trained on.
package features

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/rainfall-prediction/internal/weather"
)

// DateLayout is the only accepted request date format.
const DateLayout = "2006-01-02"

// Column indexes. The order must match the training data; the scaler is
// order-sensitive.
const (
	Day = iota
	Pressure
	MaxTemp
	Temperature
	MinTemp
	Dewpoint
	Humidity
	Cloud
	Sunshine
	WindDirection
	WindSpeed

	Count
)

// Names lists the column names in vector order.
var Names = [Count]string{
	"day", "pressure", "maxtemp", "temperature", "mintemp", "dewpoint",
	"humidity", "cloud", "sunshine", "winddirection", "windspeed",
}

// Defaults applied when the upstream response lacks a field.
const (
	DefaultPressure    = 1012.0
	DefaultMaxTemp     = 25.0
	DefaultMinTemp     = 20.0
	DefaultAvgTemp     = 22.0
	DefaultHumidity    = 80.0
	DefaultCloud       = 50.0
	DefaultWindDegree  = 180.0
	DefaultWindKph     = 10.0
	DefaultTotalPrecip = 0.0
)

// Vector is the classifier input.
type Vector [Count]float64

// Slice returns a copy of the vector as a slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, Count)
	copy(out, v[:])
	return out
}

// Map names every value; handy for logs.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, Count)
	for i, name := range Names {
		m[name] = v[i]
	}
	return m
}

// Set is the extractor output: the model vector plus the daily precipitation total
// used by the precipitation advisory policy.
type Set struct {
	Vector        Vector
	TotalPrecipMM float64
}

// Extract builds the feature set for one forecast day. It never fails: every
// missing field falls back to its default.
func Extract(day weather.ForecastDay, noon weather.HourSnapshot, date time.Time) Set {
	cloud := valueOr(noon.Cloud, DefaultCloud)

	var v Vector
	v[Day] = float64(DayOfYear(date))
	v[Pressure] = valueOr(noon.PressureMb, DefaultPressure)
	v[MaxTemp] = valueOr(day.MaxTempC, DefaultMaxTemp)
	v[Temperature] = temperature(day)
	v[MinTemp] = valueOr(day.MinTempC, DefaultMinTemp)
	v[Dewpoint] = DewpointFrom(valueOr(day.AvgTempC, DefaultAvgTemp), valueOr(day.AvgHumidity, DefaultHumidity))
	v[Humidity] = valueOr(day.AvgHumidity, DefaultHumidity)
	v[Cloud] = cloud
	v[Sunshine] = SunshineFrom(cloud)
	v[WindDirection] = valueOr(noon.WindDegree, DefaultWindDegree)
	v[WindSpeed] = valueOr(noon.WindKph, DefaultWindKph)

	return Set{
		Vector:        v,
		TotalPrecipMM: valueOr(day.TotalPrecipMM, DefaultTotalPrecip),
	}
}

// temperature prefers the daily average, then the max/min midpoint.
func temperature(day weather.ForecastDay) float64 {
	if day.AvgTempC != nil {
		return *day.AvgTempC
	}
	if day.MaxTempC != nil && day.MinTempC != nil {
		return (*day.MaxTempC + *day.MinTempC) / 2
	}
	return DefaultAvgTemp
}

// DewpointFrom approximates the dew point from mean temperature and humidity.
func DewpointFrom(avgTempC, avgHumidity float64) float64 {
	return avgTempC - ((100 - avgHumidity) / 5)
}

// SunshineFrom estimates sunshine hours out of 12 from cloud cover percent.
func SunshineFrom(cloud float64) float64 {
	return math.Max(0, 12*(1-cloud/100))
}

// DayOfYear returns the ordinal day (1-366).
func DayOfYear(date time.Time) int {
	return date.YearDay()
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
