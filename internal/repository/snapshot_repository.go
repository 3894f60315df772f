package repository

import (
	"context"

	"github.com/straye-as/product-configurator/internal/domain"
	"gorm.io/gorm"
)

// SnapshotRepository handles database operations for configurator snapshots
type SnapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a new SnapshotRepository instance
func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a new snapshot record
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *domain.ConfiguratorSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

// GetByID retrieves a snapshot of a configurator
func (r *SnapshotRepository) GetByID(ctx context.Context, configuratorID, id int64) (*domain.ConfiguratorSnapshot, error) {
	var snapshot domain.ConfiguratorSnapshot
	err := r.db.WithContext(ctx).
		Where("id = ? AND configurator_id = ?", id, configuratorID).
		First(&snapshot).Error
	if err != nil {
		return nil, notFound(err, domain.NotFoundSnapshot, id)
	}
	return &snapshot, nil
}

// ListByConfigurator returns the snapshots of a configurator, newest first
func (r *SnapshotRepository) ListByConfigurator(ctx context.Context, configuratorID int64) ([]domain.ConfiguratorSnapshot, error) {
	var snapshots []domain.ConfiguratorSnapshot
	err := r.db.WithContext(ctx).
		Where("configurator_id = ?", configuratorID).
		Order("created_at DESC, id DESC").
		Find(&snapshots).Error
	return snapshots, err
}
