package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// cronTickerInterval is the interval at which the cron scheduler checks for execution
const cronTickerInterval = 1 * time.Minute

// OutletProvider lists the outlets the nightly run covers
type OutletProvider interface {
	ListOutletIDs(ctx context.Context) ([]string, error)
}

// CronConfig holds configuration for the nightly analytics run
type CronConfig struct {
	Enabled bool
	// CronHour and CronMinute are the local time of the daily run
	CronHour   int
	CronMinute int
	// SnapshotWindowDays is the length of the trailing period each snapshot covers
	SnapshotWindowDays int
}

// DefaultCronConfig runs at 03:00 over the trailing 30 days
func DefaultCronConfig() CronConfig {
	return CronConfig{
		Enabled:            true,
		CronHour:           3,
		CronMinute:         0,
		SnapshotWindowDays: 30,
	}
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract hour and minute.
// An empty expression yields the 03:00 default.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour, minute = 3, 0

	parts := strings.Fields(cronExpr)
	if len(parts) == 0 {
		return hour, minute, nil
	}
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("%w: expected \"minute hour * * *\", got %q", ErrInvalidConfig, cronExpr)
	}

	if parts[0] != "*" {
		if minute, err = strconv.Atoi(parts[0]); err != nil {
			return 0, 0, fmt.Errorf("%w: minute %q", ErrInvalidConfig, parts[0])
		}
	}
	if parts[1] != "*" {
		if hour, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, fmt.Errorf("%w: hour %q", ErrInvalidConfig, parts[1])
		}
	}

	if minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidConfig, minute)
	}
	if hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidConfig, hour)
	}
	return hour, minute, nil
}

// CronScheduler submits the nightly snapshot jobs for every outlet
type CronScheduler struct {
	config    CronConfig
	scheduler *Scheduler
	outlets   OutletProvider
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
	lastRunAt   *time.Time
	nextRunAt   *time.Time
}

// NewCronScheduler creates a cron scheduler feeding jobs into s
func NewCronScheduler(config CronConfig, s *Scheduler, outlets OutletProvider, logger *zap.Logger) *CronScheduler {
	if config.SnapshotWindowDays < 1 {
		config.SnapshotWindowDays = 30
	}
	return &CronScheduler{
		config:    config,
		scheduler: s,
		outlets:   outlets,
		logger:    logger,
		now:       time.Now,
	}
}

// Start starts the cron loop
func (c *CronScheduler) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.calculateNextRunTime()

	c.wg.Add(1)
	go c.cronLoop(ctx)

	c.logger.Info("Analytics cron scheduler started",
		zap.Int("cron_hour", c.config.CronHour),
		zap.Int("cron_minute", c.config.CronMinute),
		zap.Int("snapshot_window_days", c.config.SnapshotWindowDays),
	)
	return nil
}

// Stop stops the cron loop. The job scheduler is left running.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Analytics cron scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronScheduler) cronLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if c.shouldRun(now) {
				c.runDaily(ctx, now)
				c.calculateNextRunTime()
			}
		}
	}
}

// shouldRun reports whether now is the configured minute and today has not run yet
func (c *CronScheduler) shouldRun(now time.Time) bool {
	if now.Hour() != c.config.CronHour || now.Minute() != c.config.CronMinute {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRunDate != now.Format("2006-01-02")
}

func (c *CronScheduler) calculateNextRunTime() {
	now := c.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), c.config.CronHour, c.config.CronMinute, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	c.mu.Lock()
	c.nextRunAt = &next
	c.mu.Unlock()
}

// snapshotPeriod returns the trailing window ending yesterday
func (c *CronScheduler) snapshotPeriod(now time.Time) (string, string) {
	end := now.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(c.config.SnapshotWindowDays - 1))
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

// runDaily submits one snapshot job for all outlets combined and one per outlet
func (c *CronScheduler) runDaily(ctx context.Context, now time.Time) int {
	c.mu.Lock()
	c.lastRunDate = now.Format("2006-01-02")
	c.lastRunAt = &now
	c.mu.Unlock()

	outletIDs, err := c.outlets.ListOutletIDs(ctx)
	if err != nil {
		c.logger.Error("Failed to list outlets for nightly analytics", zap.Error(err))
		return 0
	}

	start, end := c.snapshotPeriod(now)
	submitted := 0
	for _, outletID := range append([]string{""}, outletIDs...) {
		job := NewJob(JobTypeMenuEngineeringSnapshot, outletID, start, end, c.scheduler.config.RetryAttempts)
		job.RecalculateCosts = true
		if err := c.scheduler.SubmitJob(job); err != nil {
			c.logger.Error("Failed to submit snapshot job",
				zap.String("outlet_id", outletID),
				zap.Error(err),
			)
			continue
		}
		submitted++
	}

	c.logger.Info("Nightly analytics jobs scheduled",
		zap.Int("outlet_count", len(outletIDs)),
		zap.Int("jobs_submitted", submitted),
		zap.String("period_start", start),
		zap.String("period_end", end),
	)
	return submitted
}

// TriggerManualRun runs the nightly submission immediately.
// It uses a background context so the run outlives the triggering request.
func (c *CronScheduler) TriggerManualRun() error {
	c.mu.Lock()
	running := c.isRunning
	c.mu.Unlock()
	if !running || !c.scheduler.IsRunning() {
		return ErrSchedulerNotRunning
	}
	go c.runDaily(context.Background(), c.now())
	return nil
}

// GetStatus returns the current status of the cron scheduler
func (c *CronScheduler) GetStatus() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]any{
		"enabled":              c.config.Enabled,
		"is_running":           c.isRunning,
		"cron_hour":            c.config.CronHour,
		"cron_minute":          c.config.CronMinute,
		"snapshot_window_days": c.config.SnapshotWindowDays,
		"last_run_at":          c.lastRunAt,
		"next_run_at":          c.nextRunAt,
	}
}
