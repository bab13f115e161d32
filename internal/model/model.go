// Package model loads the pre-fitted feature scaler and rainfall classifier and
// runs inference with them. Both are read-only once loaded.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInference is returned (wrapped) when scaling or scoring a vector fails,
// typically because of a shape mismatch.
var ErrInference = errors.New("model inference failed")

// Scaler normalizes a raw feature vector.
type Scaler interface {
	Transform(x []float64) ([]float64, error)
}

// Classifier returns the probability of the positive (rain) class.
type Classifier interface {
	PredictProba(x []float64) (float64, error)
}

// Model pairs a scaler with the classifier trained on its output.
type Model struct {
	Scaler     Scaler
	Classifier Classifier
}

// New builds a Model from already constructed parts (tests use fakes).
func New(scaler Scaler, classifier Classifier) *Model {
	return &Model{Scaler: scaler, Classifier: classifier}
}

// Load reads the classifier and scaler files. Each file is validated against
// expectedFeatures so that a model trained on another column layout is rejected at
// startup instead of silently producing garbage.
func Load(modelPath, scalerPath string, expectedFeatures []string) (*Model, error) {
	var sc StandardScaler
	if err := readJSON(scalerPath, &sc); err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}
	if err := sc.Validate(expectedFeatures); err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}

	var rf RandomForest
	if err := readJSON(modelPath, &rf); err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	if err := rf.Validate(len(expectedFeatures)); err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}

	return New(&sc, &rf), nil
}

// Predict scales x and returns the positive class probability.
func (m *Model) Predict(x []float64) (float64, error) {
	scaled, err := m.Scaler.Transform(x)
	if err != nil {
		return 0, err
	}
	p, err := m.Classifier.PredictProba(scaled)
	if err != nil {
		return 0, err
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: probability %v out of range", ErrInference, p)
	}
	return p, nil
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
