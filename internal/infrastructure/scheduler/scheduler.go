package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobStatus represents the status of a scheduled job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// JobType identifies the work a job performs
type JobType string

const (
	JobTypeMenuEngineeringSnapshot JobType = "MENU_ENGINEERING_SNAPSHOT"
	JobTypeRecipeCosting           JobType = "RECIPE_COSTING"
)

// AllJobTypes returns all available job types
func AllJobTypes() []JobType {
	return []JobType{
		JobTypeMenuEngineeringSnapshot,
		JobTypeRecipeCosting,
	}
}

// IsValid reports whether t is a known job type
func (t JobType) IsValid() bool {
	switch t {
	case JobTypeMenuEngineeringSnapshot, JobTypeRecipeCosting:
		return true
	}
	return false
}

// Job represents a unit of background analytics work.
// PeriodStart and PeriodEnd are canonical YYYY-MM-DD dates.
type Job struct {
	ID               uuid.UUID
	Type             JobType
	OutletID         string // empty means all outlets
	PeriodStart      string
	PeriodEnd        string
	RecalculateCosts bool // snapshot jobs only: roll up recipe costs first
	Status           JobStatus
	Error            string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	RetryCount       int
	MaxRetries       int
}

// NewJob creates a new job instance
func NewJob(jobType JobType, outletID, periodStart, periodEnd string, maxRetries int) *Job {
	return &Job{
		ID:          uuid.New(),
		Type:        jobType,
		OutletID:    outletID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      JobStatusPending,
		MaxRetries:  maxRetries,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Complete marks the job as successful
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *Job) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job should be retried
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry resets the job for another attempt
func (j *Job) ScheduleRetry() {
	j.RetryCount++
	j.Status = JobStatusPending
	j.Error = ""
}

// JobExecutor is the interface for executing jobs
type JobExecutor interface {
	Execute(ctx context.Context, job *Job) error
}

// JobRecorder persists job run history. Implementations must not block for long.
type JobRecorder interface {
	RecordJobStart(ctx context.Context, job *Job) error
	RecordJobComplete(ctx context.Context, job *Job) error
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	QueueSize         int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		QueueSize:         100,
		JobTimeout:        10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        time.Minute,
	}
}

// Scheduler runs jobs on a fixed pool of workers
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	recorder JobRecorder
	logger   *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance. recorder may be nil.
func NewScheduler(config SchedulerConfig, executor JobExecutor, recorder JobRecorder, logger *zap.Logger) *Scheduler {
	if config.MaxConcurrentJobs < 1 {
		config.MaxConcurrentJobs = 1
	}
	if config.QueueSize < 1 {
		config.QueueSize = 100
	}
	return &Scheduler{
		config:   config,
		executor: executor,
		recorder: recorder,
		logger:   logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true
	s.jobs = make(chan *Job, s.config.QueueSize)

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i, s.jobs)
	}

	s.logger.Info("Analytics scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Int("queue_size", s.config.QueueSize),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler. Queued jobs are drained before
// the workers exit unless ctx expires first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	close(s.jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if s.cancel != nil {
			s.cancel()
		}
		s.logger.Info("Analytics scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		if s.cancel != nil {
			s.cancel()
		}
		s.logger.Warn("Analytics scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler accepts jobs
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// SubmitJob enqueues a job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	if !job.Type.IsValid() {
		return ErrInvalidJobType
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.String("outlet_id", job.OutletID),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// ScheduleJob builds and submits a job with the configured retry budget
func (s *Scheduler) ScheduleJob(jobType JobType, outletID, periodStart, periodEnd string) (*Job, error) {
	job := NewJob(jobType, outletID, periodStart, periodEnd, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return nil, err
	}
	return job, nil
}

// worker processes jobs from the queue
func (s *Scheduler) worker(ctx context.Context, workerID int, jobs <-chan *Job) {
	defer s.wg.Done()

	for job := range jobs {
		s.processJob(ctx, job, workerID)
	}
	s.logger.Debug("Worker stopping", zap.Int("worker_id", workerID))
}

// processJob executes a single job
func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	job.Start()
	s.record(ctx, job, true)

	log := s.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.String("outlet_id", job.OutletID),
	)
	log.Info("Processing job")

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := s.executor.Execute(jobCtx, job)
	cancel()

	if err == nil {
		job.Complete()
		s.record(ctx, job, false)
		log.Info("Job completed successfully")
		return
	}

	job.Fail(err.Error())
	s.record(ctx, job, false)
	log.Error("Job failed", zap.Error(err))

	if !job.ShouldRetry() {
		return
	}
	job.ScheduleRetry()
	log.Info("Job scheduled for retry",
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Duration("delay", s.config.RetryDelay),
	)
	time.AfterFunc(s.config.RetryDelay, func() {
		if err := s.SubmitJob(job); err != nil {
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
		}
	})
}

func (s *Scheduler) record(ctx context.Context, job *Job, start bool) {
	if s.recorder == nil {
		return
	}
	var err error
	if start {
		err = s.recorder.RecordJobStart(ctx, job)
	} else {
		err = s.recorder.RecordJobComplete(ctx, job)
	}
	if err != nil {
		s.logger.Warn("Failed to record job run",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}
