package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/rainfall-prediction/internal/metrics"
	"github.com/i474232898/rainfall-prediction/internal/weather"
)

const defaultInterval = time.Hour

// Runner produces and stores one prediction. *prediction.Service implements it.
type Runner interface {
	PredictAndStore(ctx context.Context, loc weather.Location, crop string) error
}

// Scheduler periodically predicts tomorrow's rainfall for the watch locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	locations []weather.Location
	crop      string
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(locations []weather.Location, crop string, interval time.Duration, runner Runner) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		locations: locations,
		crop:      crop,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no watch locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("INFO: scheduler: watching %d locations every %s", len(s.locations), s.interval)
	return nil
}

// runOnce predicts for every watch location concurrently.
func (s *Scheduler) runOnce() {
	log.Println("scheduler: running watch prediction job")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if err := s.runner.PredictAndStore(ctx, loc, s.crop); err != nil {
				metrics.WatchRuns.WithLabelValues("failed").Inc()
				log.Printf("ERROR: scheduler: prediction failed for %s: %v", loc.Key(), err)
				return
			}
			metrics.WatchRuns.WithLabelValues("ok").Inc()
		}(loc)
	}
	wg.Wait()
	log.Println("scheduler: completed watch prediction job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
