package jobs

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"pulse/pkg/logging"
)

// NotificationCleanupJob prunes old read notifications and stale link
// preview rows so the hot tables stay small.
type NotificationCleanupJob struct {
	db       *sql.DB
	logger   logging.Logger
	interval time.Duration
	maxAge   time.Duration // How old a read notification must be before removal
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NotificationCleanupConfig holds configuration for the cleanup job
type NotificationCleanupConfig struct {
	DB       *sql.DB
	Logger   logging.Logger
	Interval time.Duration // How often to run (default: 1 hour)
	MaxAge   time.Duration // Min age of read notifications to prune (default: 30 days)
}

// NewNotificationCleanupJob creates a new cleanup job
func NewNotificationCleanupJob(cfg NotificationCleanupConfig) *NotificationCleanupJob {
	interval := cfg.Interval
	if interval == 0 {
		interval = time.Hour
	}
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = 30 * 24 * time.Hour
	}
	return &NotificationCleanupJob{
		db:       cfg.DB,
		logger:   cfg.Logger,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop
func (j *NotificationCleanupJob) Start() {
	j.wg.Add(1)
	go j.run()
	j.logger.Info("Notification cleanup job started")
}

// Stop gracefully stops the job
func (j *NotificationCleanupJob) Stop() {
	close(j.stopCh)
	j.wg.Wait()
	j.logger.Info("Notification cleanup job stopped")
}

func (j *NotificationCleanupJob) run() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.stopCh:
			return
		}
	}
}

func (j *NotificationCleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := j.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE read = true
		  AND created_at < NOW() - $1::interval
	`, j.maxAge.String())
	if err != nil {
		j.logger.WithError(err).Error("Failed to prune read notifications")
	} else if affected, _ := result.RowsAffected(); affected > 0 {
		j.logger.WithField("count", affected).Info("Pruned read notifications")
	}

	// Previews unused for a week get re-scraped on demand anyway
	result, err = j.db.ExecContext(ctx, `
		DELETE FROM link_previews
		WHERE updated_at < NOW() - INTERVAL '7 days'
	`)
	if err != nil {
		j.logger.WithError(err).Error("Failed to prune stale link previews")
	} else if affected, _ := result.RowsAffected(); affected > 0 {
		j.logger.WithField("count", affected).Info("Pruned stale link previews")
	}
}
