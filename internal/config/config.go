package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/rainfall-prediction/internal/advisory"
	"github.com/i474232898/rainfall-prediction/internal/weather"
	"github.com/i474232898/rainfall-prediction/internal/weather/providers"
)

type AppConfig struct {
	Port string

	WeatherAPIKey     string
	WeatherAPIBaseURL string

	// HTTPTimeout bounds every outbound weather call; expiry is a fetch failure.
	HTTPTimeout time.Duration

	// Outbound limits towards the weather provider.
	WeatherRPS        float64
	WeatherBurst      int
	WeatherMaxRetries int // 0 = one attempt per prediction

	ModelPath  string
	ScalerPath string

	AdvisoryPolicy      string
	DefaultCrop         string
	ProbabilityDecimals int

	// Watch feed. Empty WatchLocations disables the scheduler.
	WatchLocations  []weather.Location
	WatchCrop       string
	FetchInterval   time.Duration
	StoreMaxHistory int           // max number of records per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of records (0 = unlimited)
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHERAPI_API_KEY is required")
	}
	cfg.WeatherAPIBaseURL = getenvDefault("WEATHERAPI_BASE_URL", providers.DefaultWeatherAPIBaseURL)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	cfg.WeatherRPS = getenvFloat("WEATHER_RPS", 5)
	cfg.WeatherBurst = getenvInt("WEATHER_BURST", 5)
	cfg.WeatherMaxRetries = getenvInt("WEATHER_MAX_RETRIES", 0)
	if cfg.WeatherMaxRetries < 0 {
		return nil, fmt.Errorf("WEATHER_MAX_RETRIES must not be negative")
	}

	cfg.ModelPath = getenvDefault("MODEL_PATH", "models/model_rf.json")
	cfg.ScalerPath = getenvDefault("SCALER_PATH", "models/scaler.json")

	cfg.AdvisoryPolicy = getenvDefault("ADVISORY_POLICY", advisory.ProbabilityPolicyName)
	cfg.DefaultCrop = getenvDefault("DEFAULT_CROP", advisory.CropMaize)
	cfg.ProbabilityDecimals = getenvInt("PROBABILITY_DECIMALS", 4)
	if cfg.ProbabilityDecimals < 1 || cfg.ProbabilityDecimals > 8 {
		return nil, fmt.Errorf("PROBABILITY_DECIMALS must be between 1 and 8")
	}

	locs, err := loadWatchLocations()
	if err != nil {
		return nil, err
	}
	cfg.WatchLocations = locs
	cfg.WatchCrop = getenvDefault("WATCH_CROP", cfg.DefaultCrop)

	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "1h"); err != nil {
		return nil, err
	}

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 48) // two days at hourly runs
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "72h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadWatchLocations() ([]weather.Location, error) {
	city := os.Getenv("WATCH_LOCATION_CITY")
	country := os.Getenv("WATCH_LOCATION_COUNTRY")
	if city == "" && country == "" {
		return nil, nil
	}
	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of watch cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		loc := weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		}
		if loc.City == "" || loc.Country == "" {
			return nil, fmt.Errorf("watch location %d has an empty city or country", i+1)
		}
		locs = append(locs, loc)
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Printf("INFO: ignoring invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
		log.Printf("INFO: ignoring invalid %s=%q, using %v", key, v, def)
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
