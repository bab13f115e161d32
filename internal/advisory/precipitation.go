package advisory

// Daily precipitation thresholds in millimetres.
const (
	LowPrecipMM    = 1.0
	ExcessPrecipMM = 20.0
)

const suitablePrecipText = "Expected rainfall is within a suitable range for most crops. Continue normal field operations."

type precipTexts struct {
	low    string
	excess string
}

var precipitationTexts = map[string]precipTexts{
	CropTeff: {
		low:    "Little rain expected. Irrigate teff seedbeds lightly to keep the fine seed from drying out.",
		excess: "Heavy rain expected. Teff is prone to lodging and seed wash-off; postpone sowing and open drainage furrows.",
	},
	CropCoffee: {
		low:    "Little rain expected. Mulch and irrigate coffee trees, especially young plants and flowering bushes.",
		excess: "Heavy rain expected. Watch coffee for berry disease and waterlogged roots; clear drainage around the trees.",
	},
	CropMaize: {
		low:    "Little rain expected. Irrigate maize if it is at tasseling or silking, when water stress cuts yield most.",
		excess: "Heavy rain expected. Delay fertilizer application on maize to avoid nitrogen runoff and check field drainage.",
	},
	CropSorghum: {
		low:    "Little rain expected. Sorghum tolerates drought well, but irrigate if the crop is at the booting stage.",
		excess: "Heavy rain expected. Protect sorghum heads from mould and make sure the field drains freely.",
	},
	CropWheat: {
		low:    "Little rain expected. Irrigate wheat at crown root initiation and grain filling if soil moisture is low.",
		excess: "Heavy rain expected. Wheat is at risk of rust and lodging; delay spraying and harvesting until fields dry.",
	},
	CropBarley: {
		low:    "Little rain expected. Irrigate barley during tillering and heading if the soil is dry.",
		excess: "Heavy rain expected. Barley is sensitive to waterlogging; drain low spots and postpone field work.",
	},
}

// PrecipitationPolicy ignores the probability and the requested crop: it reports
// on the forecast precipitation total for every supported crop.
type PrecipitationPolicy struct{}

func NewPrecipitationPolicy() *PrecipitationPolicy {
	return &PrecipitationPolicy{}
}

func (p *PrecipitationPolicy) Name() string { return PrecipitationPolicyName }

// Classify reports the precipitation level shared by all crops.
func (p *PrecipitationPolicy) Classify(totalPrecipMM float64) Level {
	switch {
	case totalPrecipMM < LowPrecipMM:
		return LevelLow
	case totalPrecipMM > ExcessPrecipMM:
		return LevelHigh
	default:
		return LevelSuitable
	}
}

func (p *PrecipitationPolicy) Advise(in Input) Report {
	level := p.Classify(in.TotalPrecipMM)

	advisories := make(map[string]string, len(Crops))
	for _, crop := range Crops {
		switch level {
		case LevelLow:
			advisories[crop] = precipitationTexts[crop].low
		case LevelHigh:
			advisories[crop] = precipitationTexts[crop].excess
		default:
			advisories[crop] = suitablePrecipText
		}
	}

	total := in.TotalPrecipMM
	return Report{Advisories: advisories, TotalPrecipMM: &total}
}
