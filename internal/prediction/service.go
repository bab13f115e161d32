package prediction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/rainfall-prediction/internal/advisory"
	"github.com/i474232898/rainfall-prediction/internal/common"
	"github.com/i474232898/rainfall-prediction/internal/features"
	"github.com/i474232898/rainfall-prediction/internal/metrics"
	"github.com/i474232898/rainfall-prediction/internal/model"
	"github.com/i474232898/rainfall-prediction/internal/weather"
)

// ErrInvalidRequest is returned (wrapped) when the request fails validation. It is
// always detected before any upstream call.
var ErrInvalidRequest = errors.New("invalid prediction request")

// ErrNoStore is returned by the feed methods when the service runs without a store.
var ErrNoStore = errors.New("prediction store not configured")

// DefaultDecimals is the default rounding precision of rainfall_probability.
const DefaultDecimals = 4

// Options holds the tunables of a Service.
type Options struct {
	DefaultCrop string
	// Decimals is the rounding precision of the reported probability; 0 means
	// DefaultDecimals.
	Decimals int
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Service runs predictions end to end: weather fetch, feature extraction,
// scaling and scoring, advisory selection.
type Service struct {
	provider  weather.Provider
	predictor Predictor
	policy    advisory.Policy
	store     Store
	opts      Options
}

// NewService creates a new Service. store may be nil when the watch feed is off.
func NewService(provider weather.Provider, predictor Predictor, policy advisory.Policy, store Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultCrop == "" {
		opts.DefaultCrop = advisory.CropMaize
	}
	opts.DefaultCrop = advisory.NormalizeCrop(opts.DefaultCrop)
	if opts.Decimals <= 0 {
		opts.Decimals = DefaultDecimals
	}
	return &Service{
		provider:  provider,
		predictor: predictor,
		policy:    policy,
		store:     store,
		opts:      opts,
	}
}

// Predict validates req, fetches the forecast and scores it.
func (s *Service) Predict(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res, err := s.predict(ctx, req)
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil && res.Prediction == LabelRain:
		metrics.Predictions.WithLabelValues(metrics.OutcomeRain).Inc()
	case err == nil:
		metrics.Predictions.WithLabelValues(metrics.OutcomeNoRain).Inc()
	case errors.Is(err, ErrInvalidRequest):
		metrics.Predictions.WithLabelValues(metrics.OutcomeInvalid).Inc()
	case errors.Is(err, weather.ErrDataUnavailable):
		metrics.Predictions.WithLabelValues(metrics.OutcomeUnavailable).Inc()
	case errors.Is(err, model.ErrInference):
		metrics.Predictions.WithLabelValues(metrics.OutcomeInference).Inc()
	default:
		metrics.Predictions.WithLabelValues(metrics.OutcomeError).Inc()
	}
	return res, err
}

func (s *Service) predict(ctx context.Context, req Request) (Result, error) {
	city := strings.TrimSpace(req.City)
	country := strings.TrimSpace(req.Country)
	if city == "" || country == "" {
		return Result{}, fmt.Errorf("%w: city and country are required", ErrInvalidRequest)
	}

	dateStr := strings.TrimSpace(req.Date)
	if dateStr == "" {
		dateStr = s.opts.Now().AddDate(0, 0, 1).Format(features.DateLayout)
	}
	date, err := features.ParseDate(dateStr)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	crop := advisory.NormalizeCrop(req.Crop)
	if crop == "" {
		crop = s.opts.DefaultCrop
	}

	loc := weather.Location{City: city, Country: country}
	fc, err := s.provider.FetchForecast(ctx, loc, date)
	if err != nil {
		log.Printf("ERROR: provider %s forecast failed for %s on %s: %v", s.provider.Name(), loc.Key(), dateStr, err)
		return Result{}, err
	}

	set := features.Extract(fc.Day, fc.Noon, date)
	log.Printf("DEBUG: features for %s on %s: %v", loc.Key(), dateStr, set.Vector.Map())

	proba, err := s.predictor.Predict(set.Vector.Slice())
	if err != nil {
		log.Printf("ERROR: inference failed for %s on %s: %v", loc.Key(), dateStr, err)
		if !errors.Is(err, model.ErrInference) {
			err = fmt.Errorf("%w: %v", model.ErrInference, err)
		}
		return Result{}, err
	}
	metrics.RainProbability.Observe(proba)

	label := LabelNoRain
	if proba >= RainThreshold {
		label = LabelRain
	}

	report := s.policy.Advise(advisory.Input{
		Crop:          crop,
		Probability:   proba,
		TotalPrecipMM: set.TotalPrecipMM,
	})

	return Result{
		City:                city,
		Country:             country,
		Date:                dateStr,
		RainfallProbability: common.RoundTo(proba, s.opts.Decimals),
		Prediction:          label,
		Report:              report,
	}, nil
}

// PredictAndStore predicts tomorrow's rainfall for loc and stores the record.
func (s *Service) PredictAndStore(ctx context.Context, loc weather.Location, crop string) error {
	if s.store == nil {
		return ErrNoStore
	}

	log.Printf("DEBUG: PredictAndStore called for %s", loc.Key())
	res, err := s.Predict(ctx, Request{City: loc.City, Country: loc.Country, Crop: crop})
	if err != nil {
		// Do not overwrite the last good record.
		return err
	}

	if crop == "" {
		crop = s.opts.DefaultCrop
	}
	s.store.SaveRecord(loc, Record{
		ID:        uuid.NewString(),
		Location:  loc,
		Crop:      advisory.NormalizeCrop(crop),
		Result:    res,
		CreatedAt: s.opts.Now().UTC(),
	})
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc weather.Location) (Record, error) {
	if s.store == nil {
		return Record{}, ErrNoStore
	}
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc weather.Location, from, to time.Time) ([]Record, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.GetRange(loc, from, to)
}
