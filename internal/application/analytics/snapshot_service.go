package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/infrastructure/logger"
	"github.com/kitchenops/backend/internal/infrastructure/scheduler"
	"github.com/kitchenops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Analyzer computes fresh menu engineering rows for a validated range
type Analyzer interface {
	Refresh(ctx context.Context, r analytics.DateRange, outletID string) ([]analytics.DishAnalytics, error)
}

// CostRecalculator rolls up recipe costs
type CostRecalculator interface {
	Recalculate(ctx context.Context, outletID string) (*CostingResult, error)
}

// JobScheduler queues background jobs
type JobScheduler interface {
	ScheduleJob(jobType scheduler.JobType, outletID, periodStart, periodEnd string) (*scheduler.Job, error)
}

// SnapshotService runs analytics jobs and serves their persisted results.
// It is the scheduler's JobExecutor.
type SnapshotService struct {
	analyzer   Analyzer
	costing    CostRecalculator
	snapshots  analytics.SnapshotRepository
	jobs       JobScheduler
	metrics    *telemetry.AnalyticsMetrics
	logger     *zap.Logger
	windowDays int
	now        func() time.Time
}

// NewSnapshotService creates a new SnapshotService. costing and metrics may be nil.
func NewSnapshotService(
	analyzer Analyzer,
	costing CostRecalculator,
	snapshots analytics.SnapshotRepository,
	metrics *telemetry.AnalyticsMetrics,
	logger *zap.Logger,
	windowDays int,
) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if windowDays < 1 {
		windowDays = 30
	}
	return &SnapshotService{
		analyzer:   analyzer,
		costing:    costing,
		snapshots:  snapshots,
		metrics:    metrics,
		logger:     logger,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// SetJobScheduler attaches the queue used by RequestSnapshot and
// RequestCostingRun. The scheduler is built after its executor, so this
// cannot be a constructor argument.
func (s *SnapshotService) SetJobScheduler(jobs JobScheduler) {
	s.jobs = jobs
}

// Execute runs one job
func (s *SnapshotService) Execute(ctx context.Context, job *scheduler.Job) error {
	var err error
	switch job.Type {
	case scheduler.JobTypeRecipeCosting:
		err = s.runCosting(ctx, job.OutletID)
	case scheduler.JobTypeMenuEngineeringSnapshot:
		err = s.runSnapshot(ctx, job)
	default:
		err = fmt.Errorf("%w: %s", scheduler.ErrInvalidJobType, job.Type)
	}

	status := string(scheduler.JobStatusSuccess)
	if err != nil {
		status = string(scheduler.JobStatusFailed)
	}
	s.metrics.RecordJob(ctx, string(job.Type), status)
	return err
}

func (s *SnapshotService) runCosting(ctx context.Context, outletID string) error {
	if s.costing == nil {
		return errors.New("recipe costing is not configured")
	}
	_, err := s.costing.Recalculate(ctx, outletID)
	return err
}

func (s *SnapshotService) runSnapshot(ctx context.Context, job *scheduler.Job) error {
	if job.RecalculateCosts && s.costing != nil {
		if err := s.runCosting(ctx, job.OutletID); err != nil {
			return fmt.Errorf("recalculate costs before snapshot: %w", err)
		}
	}

	r, err := s.jobPeriod(job)
	if err != nil {
		return err
	}

	rows, err := s.analyzer.Refresh(ctx, r, job.OutletID)
	if err != nil {
		return err
	}

	snap := &analytics.Snapshot{
		ID:          uuid.New(),
		OutletID:    job.OutletID,
		PeriodStart: r.Start,
		PeriodEnd:   r.End,
		DishCount:   len(rows),
		Rows:        rows,
		ComputedAt:  s.now().UTC(),
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	logger.Ctx(ctx, s.logger).Info("Menu engineering snapshot saved",
		zap.String("snapshot_id", snap.ID.String()),
		zap.String("outlet_id", snap.OutletID),
		zap.String("period_start", snap.PeriodStart),
		zap.String("period_end", snap.PeriodEnd),
		zap.Int("dishes", snap.DishCount),
	)
	return nil
}

func (s *SnapshotService) jobPeriod(job *scheduler.Job) (analytics.DateRange, error) {
	if job.PeriodStart == "" && job.PeriodEnd == "" {
		return analytics.TrailingDays(s.now(), s.windowDays), nil
	}
	return analytics.NewDateRange(job.PeriodStart, job.PeriodEnd)
}

// GetLatestSnapshot returns the newest snapshot for outletID, or the
// all-outlet snapshot when outletID is empty.
func (s *SnapshotService) GetLatestSnapshot(ctx context.Context, outletID string) (*SnapshotResponse, error) {
	snap, err := s.snapshots.FindLatest(ctx, outletID)
	if err != nil {
		if errors.Is(err, analytics.ErrSnapshotNotFound) {
			return nil, err
		}
		logger.Ctx(ctx, s.logger).Error("Failed to load latest snapshot",
			zap.String("outlet_id", outletID),
			zap.Error(err),
		)
		return nil, shared.ErrInternal.WithCause(err)
	}
	return ToSnapshotResponse(snap), nil
}

// RequestSnapshot validates req and queues a snapshot job
func (s *SnapshotService) RequestSnapshot(ctx context.Context, req TriggerSnapshotRequest) (*JobAcceptedResponse, error) {
	var r analytics.DateRange
	switch {
	case req.StartDate == "" && req.EndDate == "":
		r = analytics.TrailingDays(s.now(), s.windowDays)
	case req.StartDate == "" || req.EndDate == "":
		return nil, ErrPartialRange
	default:
		var err error
		if r, err = analytics.NewDateRange(req.StartDate, req.EndDate); err != nil {
			return nil, err
		}
	}
	return s.schedule(ctx, scheduler.JobTypeMenuEngineeringSnapshot, req.OutletID, r)
}

// RequestCostingRun queues a recipe cost rollup job
func (s *SnapshotService) RequestCostingRun(ctx context.Context, req TriggerCostingRequest) (*JobAcceptedResponse, error) {
	return s.schedule(ctx, scheduler.JobTypeRecipeCosting, req.OutletID, analytics.DateRange{})
}

func (s *SnapshotService) schedule(ctx context.Context, jobType scheduler.JobType, outletID string, r analytics.DateRange) (*JobAcceptedResponse, error) {
	if s.jobs == nil {
		return nil, ErrJobsUnavailable
	}
	job, err := s.jobs.ScheduleJob(jobType, outletID, r.Start, r.End)
	if err != nil {
		logger.Ctx(ctx, s.logger).Warn("Failed to queue analytics job",
			zap.String("job_type", string(jobType)),
			zap.String("outlet_id", outletID),
			zap.Error(err),
		)
		return nil, ErrJobsUnavailable.WithCause(err)
	}
	return &JobAcceptedResponse{
		JobID:       job.ID,
		JobType:     string(job.Type),
		OutletID:    job.OutletID,
		PeriodStart: job.PeriodStart,
		PeriodEnd:   job.PeriodEnd,
		Status:      string(job.Status),
	}, nil
}

var _ scheduler.JobExecutor = (*SnapshotService)(nil)
