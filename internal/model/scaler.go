package model

import (
	"fmt"
)

// columnAliases maps column names found in exported scalers to ours. The
// training dataset spells temperature "temparature".
var columnAliases = map[string]string{
	"temparature": "temperature",
}

// StandardScaler applies (x - mean) / scale per column, as fitted offline.
type StandardScaler struct {
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// Validate checks the fitted parameters against the expected column layout.
func (s *StandardScaler) Validate(expected []string) error {
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler not fitted: %d means, %d scales", len(s.Mean), len(s.Scale))
	}
	if len(s.Mean) != len(expected) {
		return fmt.Errorf("scaler fitted on %d features, expected %d", len(s.Mean), len(expected))
	}
	if len(s.FeatureNames) == 0 {
		return nil
	}
	if len(s.FeatureNames) != len(expected) {
		return fmt.Errorf("scaler lists %d feature names, expected %d", len(s.FeatureNames), len(expected))
	}
	for i, name := range expected {
		got := s.FeatureNames[i]
		if alias, ok := columnAliases[got]; ok {
			got = alias
		}
		if got != name {
			return fmt.Errorf("scaler column %d is %q, expected %q", i, s.FeatureNames[i], name)
		}
	}
	return nil
}

func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(s.Mean) == 0 {
		return nil, fmt.Errorf("%w: scaler is not fitted", ErrInference)
	}
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("%w: scaler expects %d features, got %d", ErrInference, len(s.Mean), len(x))
	}

	out := make([]float64, len(x))
	for i, v := range x {
		scale := s.Scale[i]
		// zero variance columns are left centred but unscaled
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}
