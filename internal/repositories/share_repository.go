package repositories

import (
	"context"

	"github.com/trailback/backend/pkg/models"
	"gorm.io/gorm"
)

// ShareRepository defines the interface for memory share operations
type ShareRepository interface {
	CreateShare(ctx context.Context, share *models.MemoryShare) error
	ListByMemory(ctx context.Context, memoryID string) ([]models.MemoryShare, error)
	ListSharedWith(ctx context.Context, userID string) ([]models.MemoryShare, error)
	DeleteShare(ctx context.Context, memoryID, sharedWith, sharedBy string) error
	DeleteByMemory(ctx context.Context, memoryID string) error
}

// PostgresShareRepository implements ShareRepository
type PostgresShareRepository struct {
	db *gorm.DB
}

func NewPostgresShareRepository(db *gorm.DB) *PostgresShareRepository {
	return &PostgresShareRepository{db: db}
}

// CreateShare relies on the (memory_id, shared_with, shared_by) unique index to
// reject duplicates with ErrAlreadyExists.
func (r *PostgresShareRepository) CreateShare(ctx context.Context, share *models.MemoryShare) error {
	return translate(r.db.WithContext(ctx).Create(share).Error)
}

func (r *PostgresShareRepository) ListByMemory(ctx context.Context, memoryID string) ([]models.MemoryShare, error) {
	var shares []models.MemoryShare
	err := r.db.WithContext(ctx).Where("memory_id = ?", memoryID).Order("shared_at").Find(&shares).Error
	return shares, err
}

func (r *PostgresShareRepository) ListSharedWith(ctx context.Context, userID string) ([]models.MemoryShare, error) {
	var shares []models.MemoryShare
	err := r.db.WithContext(ctx).Where("shared_with = ?", userID).Order("shared_at DESC").Find(&shares).Error
	return shares, err
}

func (r *PostgresShareRepository) DeleteShare(ctx context.Context, memoryID, sharedWith, sharedBy string) error {
	res := r.db.WithContext(ctx).
		Where("memory_id = ? AND shared_with = ? AND shared_by = ?", memoryID, sharedWith, sharedBy).
		Delete(&models.MemoryShare{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresShareRepository) DeleteByMemory(ctx context.Context, memoryID string) error {
	return r.db.WithContext(ctx).Where("memory_id = ?", memoryID).Delete(&models.MemoryShare{}).Error
}
