package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/rainfall-prediction/internal/advisory"
	httpapi "github.com/i474232898/rainfall-prediction/internal/api/http"
	"github.com/i474232898/rainfall-prediction/internal/config"
	"github.com/i474232898/rainfall-prediction/internal/features"
	"github.com/i474232898/rainfall-prediction/internal/model"
	"github.com/i474232898/rainfall-prediction/internal/prediction"
	"github.com/i474232898/rainfall-prediction/internal/scheduler"
	"github.com/i474232898/rainfall-prediction/internal/store"
	"github.com/i474232898/rainfall-prediction/internal/weather/providers"
)

func main() {
	// Load configuration (also reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Scaler and classifier are loaded once and shared read-only.
	m, err := model.Load(cfg.ModelPath, cfg.ScalerPath, features.Names[:])
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	log.Printf("INFO: model loaded from %s (scaler %s)", cfg.ModelPath, cfg.ScalerPath)

	policy, err := advisory.New(cfg.AdvisoryPolicy)
	if err != nil {
		log.Fatalf("failed to configure advisory policy: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey, providers.WeatherAPIOptions{
		BaseURL:    cfg.WeatherAPIBaseURL,
		RPS:        cfg.WeatherRPS,
		Burst:      cfg.WeatherBurst,
		MaxRetries: cfg.WeatherMaxRetries,
	})

	// The record store only backs the watch feed.
	var recordStore prediction.Store
	if len(cfg.WatchLocations) > 0 {
		recordStore = store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}

	service := prediction.NewService(provider, m, policy, recordStore, prediction.Options{
		DefaultCrop: cfg.DefaultCrop,
		Decimals:    cfg.ProbabilityDecimals,
	})

	sched := scheduler.New(cfg.WatchLocations, cfg.WatchCrop, cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "rainfall-prediction",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// leave room for the upstream weather call
		WriteTimeout: cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "rainfall-prediction",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Printf("INFO: rainfall-prediction listening on :%s (advisory policy %s)", cfg.Port, policy.Name())
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
