package analytics

import "github.com/kitchenops/backend/internal/domain/shared"

var (
	// ErrJobsUnavailable is returned when a job cannot be queued
	ErrJobsUnavailable = shared.NewDomainError("SERVICE_UNAVAILABLE", "analytics jobs are not accepting work")
	// ErrPartialRange is returned when only one snapshot date is given
	ErrPartialRange = shared.NewDomainError("INVALID_INPUT", "start_date and end_date must be given together")
)
