// Package advisory turns a rainfall prediction into crop recommendations.
package advisory

import (
	"fmt"
	"strings"
)

// NoAdvisory is reported for crops we have no table entry for.
const NoAdvisory = "No advisory available for the selected crop."

// Crop identifiers, in the order advisories are listed.
const (
	CropTeff    = "teff"
	CropCoffee  = "coffee"
	CropMaize   = "maize"
	CropSorghum = "sorghum"
	CropWheat   = "wheat"
	CropBarley  = "barley"
)

// Crops is the fixed list of supported crops.
var Crops = []string{CropTeff, CropCoffee, CropMaize, CropSorghum, CropWheat, CropBarley}

// Level classifies how the predicted rainfall compares to what a crop needs.
type Level string

const (
	LevelUnknown  Level = "unknown"
	LevelLow      Level = "low"
	LevelSuitable Level = "suitable"
	LevelHigh     Level = "high"
)

// Input carries everything a policy may look at.
type Input struct {
	Crop          string
	Probability   float64 // 0..1
	TotalPrecipMM float64
}

// Report is the advisory part of a prediction response. Which fields are set
// depends on the policy.
type Report struct {
	Advisory      string            `json:"advisory,omitempty"`
	Advisories    map[string]string `json:"advisories,omitempty"`
	TotalPrecipMM *float64          `json:"total_precip_mm,omitempty"`
}

// Policy selects advisory text for a prediction.
type Policy interface {
	Name() string
	Advise(in Input) Report
}

// Policy names accepted by New.
const (
	ProbabilityPolicyName   = "probability"
	PrecipitationPolicyName = "precipitation"
)

// New returns the policy registered under name.
func New(name string) (Policy, error) {
	switch NormalizeCrop(name) {
	case ProbabilityPolicyName, "":
		return NewProbabilityPolicy(), nil
	case PrecipitationPolicyName:
		return NewPrecipitationPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown advisory policy %q", name)
	}
}

// NormalizeCrop lowercases and trims a crop (or policy) identifier.
func NormalizeCrop(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
