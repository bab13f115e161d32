package advisory

import (
	"fmt"

	"github.com/i474232898/rainfall-prediction/internal/common"
)

// Range is the acceptable rainfall probability, in percent, for a crop.
type Range struct {
	Low  float64
	High float64
}

var probabilityRanges = map[string]Range{
	CropTeff:    {Low: 40, High: 70},
	CropCoffee:  {Low: 60, High: 85},
	CropMaize:   {Low: 50, High: 80},
	CropSorghum: {Low: 30, High: 60},
	CropWheat:   {Low: 45, High: 75},
	CropBarley:  {Low: 40, High: 70},
}

// ProbabilityPolicy compares the rain probability with a per-crop range.
type ProbabilityPolicy struct {
	ranges map[string]Range
}

func NewProbabilityPolicy() *ProbabilityPolicy {
	return &ProbabilityPolicy{ranges: probabilityRanges}
}

func (p *ProbabilityPolicy) Name() string { return ProbabilityPolicyName }

// Classify reports where probability falls relative to the crop's range. ok is
// false for unknown crops. The comparison uses the percentage as the advisory
// prints it, to one decimal.
func (p *ProbabilityPolicy) Classify(crop string, probability float64) (level Level, ok bool) {
	r, ok := p.ranges[NormalizeCrop(crop)]
	if !ok {
		return LevelUnknown, false
	}
	pct := percent(probability)
	switch {
	case pct < r.Low:
		return LevelLow, true
	case pct > r.High:
		return LevelHigh, true
	default:
		return LevelSuitable, true
	}
}

func (p *ProbabilityPolicy) Advise(in Input) Report {
	crop := NormalizeCrop(in.Crop)
	level, ok := p.Classify(crop, in.Probability)
	if !ok {
		return Report{Advisory: NoAdvisory}
	}

	r := p.ranges[crop]
	pct := percent(in.Probability)
	var msg string
	switch level {
	case LevelLow:
		msg = fmt.Sprintf("Rainfall probability of %.1f%% is below the %.0f-%.0f%% range %s needs. Plan irrigation to keep the crop from water stress.",
			pct, r.Low, r.High, crop)
	case LevelHigh:
		msg = fmt.Sprintf("Rainfall probability of %.1f%% is above the %.0f-%.0f%% range %s tolerates. Clear drainage channels and consider delaying planting or fertilizer application.",
			pct, r.Low, r.High, crop)
	default:
		msg = fmt.Sprintf("Rainfall probability of %.1f%% is within the %.0f-%.0f%% range. Conditions are suitable for %s.",
			pct, r.Low, r.High, crop)
	}
	return Report{Advisory: msg}
}

func percent(probability float64) float64 {
	return common.RoundTo(probability*100, 1)
}
