package prediction

import (
	"time"

	"github.com/i474232898/rainfall-prediction/internal/advisory"
	"github.com/i474232898/rainfall-prediction/internal/weather"
)

// Labels of the binary prediction.
const (
	LabelRain   = "Rain"
	LabelNoRain = "No Rain"
)

// RainThreshold is the probability at and above which we predict rain.
const RainThreshold = 0.5

// Request is a single prediction request. Date and Crop are optional.
type Request struct {
	City    string
	Country string
	Date    string // YYYY-MM-DD; empty means tomorrow
	Crop    string // empty means the configured default crop
}

// Result is the prediction response body.
type Result struct {
	City                string  `json:"city"`
	Country             string  `json:"country"`
	Date                string  `json:"date"`
	RainfallProbability float64 `json:"rainfall_probability"`
	Prediction          string  `json:"prediction"`

	advisory.Report
}

// Record is a stored prediction produced by the watch scheduler.
type Record struct {
	ID        string           `json:"id"`
	Location  weather.Location `json:"location"`
	Crop      string           `json:"crop"`
	Result    Result           `json:"result"`
	CreatedAt time.Time        `json:"createdAt"` // always UTC
}

// Store is the contract the in-memory record store must satisfy.
type Store interface {
	SaveRecord(loc weather.Location, rec Record)
	GetLatest(loc weather.Location) (Record, error)
	GetRange(loc weather.Location, from, to time.Time) ([]Record, error)
}

// Predictor scores a raw feature vector. *model.Model implements it.
type Predictor interface {
	Predict(x []float64) (float64, error)
}
