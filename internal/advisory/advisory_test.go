package advisory

import (
	"strings"
	"testing"
)

func TestProbabilityPolicyMaize(t *testing.T) {
	p := NewProbabilityPolicy()

	cases := []struct {
		prob  float64
		level Level
		word  string
	}{
		{0.40, LevelLow, "irrigation"},
		{0.85, LevelHigh, "drainage"},
		{0.65, LevelSuitable, "suitable"},
		{0.50, LevelSuitable, "suitable"},
		{0.80, LevelSuitable, "suitable"},
		{0.8004, LevelSuitable, "80.0%"},
		{0.802, LevelHigh, "80.2%"},
		{0.4996, LevelSuitable, "50.0%"},
	}

	for _, tc := range cases {
		level, ok := p.Classify("maize", tc.prob)
		if !ok {
			t.Fatalf("maize should be a known crop")
		}
		if level != tc.level {
			t.Errorf("Classify(maize, %v) = %s, want %s", tc.prob, level, tc.level)
		}

		r := p.Advise(Input{Crop: "maize", Probability: tc.prob})
		if !strings.Contains(r.Advisory, tc.word) {
			t.Errorf("advisory for %v = %q, want it to mention %q", tc.prob, r.Advisory, tc.word)
		}
		if r.Advisories != nil || r.TotalPrecipMM != nil {
			t.Errorf("probability policy should only set Advisory, got %+v", r)
		}
	}
}

func TestProbabilityPolicyUnknownCrop(t *testing.T) {
	p := NewProbabilityPolicy()

	r := p.Advise(Input{Crop: "rice", Probability: 0.7})
	if r.Advisory != NoAdvisory {
		t.Fatalf("advisory = %q, want %q", r.Advisory, NoAdvisory)
	}
	if r.Advisory != "No advisory available for the selected crop." {
		t.Fatalf("unexpected no-advisory text %q", r.Advisory)
	}
	if _, ok := p.Classify("rice", 0.7); ok {
		t.Fatal("rice should be unknown")
	}
}

func TestProbabilityPolicyCropNormalization(t *testing.T) {
	p := NewProbabilityPolicy()
	level, ok := p.Classify("  Coffee ", 0.7)
	if !ok || level != LevelSuitable {
		t.Fatalf("Classify(Coffee) = %s, %v", level, ok)
	}
}

func TestProbabilityPolicyCoversAllCrops(t *testing.T) {
	p := NewProbabilityPolicy()
	for _, crop := range Crops {
		if _, ok := p.Classify(crop, 0.5); !ok {
			t.Errorf("no range for %s", crop)
		}
	}
}

func TestPrecipitationPolicy(t *testing.T) {
	p := NewPrecipitationPolicy()

	cases := []struct {
		mm    float64
		level Level
	}{
		{0, LevelLow},
		{0.99, LevelLow},
		{1, LevelSuitable},
		{20, LevelSuitable},
		{20.1, LevelHigh},
	}

	for _, tc := range cases {
		if got := p.Classify(tc.mm); got != tc.level {
			t.Errorf("Classify(%v) = %s, want %s", tc.mm, got, tc.level)
		}
	}
}

func TestPrecipitationPolicyReportsEveryCrop(t *testing.T) {
	p := NewPrecipitationPolicy()

	// the requested crop does not matter, even if unknown
	r := p.Advise(Input{Crop: "rice", TotalPrecipMM: 35})
	if len(r.Advisories) != len(Crops) {
		t.Fatalf("expected %d advisories, got %d", len(Crops), len(r.Advisories))
	}
	for _, crop := range Crops {
		if !strings.Contains(r.Advisories[crop], "Heavy rain") {
			t.Errorf("%s advisory = %q, want excess text", crop, r.Advisories[crop])
		}
	}
	if r.TotalPrecipMM == nil || *r.TotalPrecipMM != 35 {
		t.Fatalf("total_precip_mm not reported: %v", r.TotalPrecipMM)
	}
	if r.Advisory != "" {
		t.Fatalf("precipitation policy should not set a single advisory, got %q", r.Advisory)
	}

	r = p.Advise(Input{TotalPrecipMM: 5})
	for _, crop := range Crops {
		if r.Advisories[crop] != suitablePrecipText {
			t.Errorf("%s advisory = %q, want generic suitable text", crop, r.Advisories[crop])
		}
	}
}

func TestNewPolicy(t *testing.T) {
	cases := map[string]string{
		"":              ProbabilityPolicyName,
		"probability":   ProbabilityPolicyName,
		"Precipitation": PrecipitationPolicyName,
	}
	for in, want := range cases {
		p, err := New(in)
		if err != nil {
			t.Fatalf("New(%q): %v", in, err)
		}
		if p.Name() != want {
			t.Errorf("New(%q).Name() = %s, want %s", in, p.Name(), want)
		}
	}

	if _, err := New("astrology"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
