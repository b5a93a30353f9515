package analytics

import "github.com/kitchenops/backend/internal/domain/shared"

var (
	ErrStartDateRequired = shared.NewDomainError("INVALID_INPUT", "startDate is required")
	ErrEndDateRequired   = shared.NewDomainError("INVALID_INPUT", "endDate is required")
	ErrInvalidStartDate  = shared.NewDomainError("INVALID_INPUT", "startDate must be a date in YYYY-MM-DD format")
	ErrInvalidEndDate    = shared.NewDomainError("INVALID_INPUT", "endDate must be a date in YYYY-MM-DD format")
	ErrInvertedRange     = shared.NewDomainError("INVALID_INPUT", "startDate must not be after endDate")
	ErrInvalidDate       = shared.NewDomainError("INVALID_INPUT", "date is not a recognized calendar date")
	ErrSnapshotNotFound  = shared.NewDomainError("NOT_FOUND", "no menu engineering snapshot found")
	ErrCatalogRead       = shared.NewDomainError("INTERNAL_ERROR", "failed to read sales catalog")
)
