package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobRunRecord is one execution attempt of a scheduled job
type JobRunRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	JobID       uuid.UUID  `gorm:"column:job_id;type:uuid;not null;index"`
	JobType     string     `gorm:"column:job_type;size:50;not null"`
	OutletID    string     `gorm:"column:outlet_id;size:64"`
	PeriodStart string     `gorm:"column:period_start;size:10"`
	PeriodEnd   string     `gorm:"column:period_end;size:10"`
	Attempt     int        `gorm:"column:attempt;not null;default:0"`
	Status      string     `gorm:"column:status;size:20;not null"`
	Error       string     `gorm:"column:error;type:text"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (JobRunRecord) TableName() string {
	return "analytics_job_runs"
}

// JobRunRepository records job runs with GORM
type JobRunRepository struct {
	db *gorm.DB
}

// NewJobRunRepository creates a new job run repository
func NewJobRunRepository(db *gorm.DB) *JobRunRepository {
	return &JobRunRepository{db: db}
}

// RecordJobStart inserts a row for the current attempt
func (r *JobRunRepository) RecordJobStart(ctx context.Context, job *Job) error {
	record := JobRunRecord{
		ID:          uuid.New(),
		JobID:       job.ID,
		JobType:     string(job.Type),
		OutletID:    job.OutletID,
		PeriodStart: job.PeriodStart,
		PeriodEnd:   job.PeriodEnd,
		Attempt:     job.RetryCount,
		Status:      string(job.Status),
		StartedAt:   job.StartedAt,
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

// RecordJobComplete updates the row of the current attempt
func (r *JobRunRepository) RecordJobComplete(ctx context.Context, job *Job) error {
	return r.db.WithContext(ctx).Model(&JobRunRecord{}).
		Where("job_id = ? AND attempt = ?", job.ID, job.RetryCount).
		Updates(map[string]any{
			"status":       string(job.Status),
			"error":        job.Error,
			"completed_at": job.CompletedAt,
		}).Error
}

// GetLatest returns the most recent run of a job type for an outlet
func (r *JobRunRepository) GetLatest(ctx context.Context, jobType JobType, outletID string) (*JobRunRecord, error) {
	var record JobRunRecord
	err := r.db.WithContext(ctx).
		Where("job_type = ? AND outlet_id = ?", string(jobType), outletID).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
