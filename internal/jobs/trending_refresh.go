package jobs

import (
	"context"
	"sync"
	"time"

	"pulse/pkg/logging"
)

// TrendingRefreshJob periodically recomputes the trending topics table
type TrendingRefreshJob struct {
	refresh  func(context.Context) error
	logger   logging.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// TrendingRefreshConfig holds configuration for the refresh job
type TrendingRefreshConfig struct {
	Refresh  func(context.Context) error
	Logger   logging.Logger
	Interval time.Duration // How often to recompute (default: 5 minutes)
}

// NewTrendingRefreshJob creates a new trending refresh job
func NewTrendingRefreshJob(cfg TrendingRefreshConfig) *TrendingRefreshJob {
	interval := cfg.Interval
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &TrendingRefreshJob{
		refresh:  cfg.Refresh,
		logger:   cfg.Logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop
func (j *TrendingRefreshJob) Start() {
	j.wg.Add(1)
	go j.run()
	j.logger.Info("Trending refresh job started")
}

// Stop gracefully stops the job
func (j *TrendingRefreshJob) Stop() {
	close(j.stopCh)
	j.wg.Wait()
	j.logger.Info("Trending refresh job stopped")
}

func (j *TrendingRefreshJob) run() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// Run once at startup
	j.recompute()

	for {
		select {
		case <-ticker.C:
			j.recompute()
		case <-j.stopCh:
			return
		}
	}
}

func (j *TrendingRefreshJob) recompute() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := j.refresh(ctx); err != nil {
		j.logger.WithError(err).Error("Failed to refresh trending topics")
		return
	}
	j.logger.Debug("Trending topics refreshed")
}
