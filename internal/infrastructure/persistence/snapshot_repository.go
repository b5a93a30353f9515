package persistence

import (
	"context"
	"errors"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSnapshotRepository persists menu engineering snapshots
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new snapshot repository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// Save inserts a snapshot
func (r *GormSnapshotRepository) Save(ctx context.Context, s *analytics.Snapshot) error {
	m, err := models.SnapshotModelFromDomain(s)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// FindLatest returns the most recently computed snapshot for outletID.
// An empty outletID selects the all-outlet snapshot, not any outlet.
func (r *GormSnapshotRepository) FindLatest(ctx context.Context, outletID string) (*analytics.Snapshot, error) {
	var m models.SnapshotModel
	err := r.db.WithContext(ctx).
		Where("outlet_id = ?", outletID).
		Order("computed_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, analytics.ErrSnapshotNotFound
		}
		return nil, err
	}
	return m.ToDomain()
}
