package repositories

import (
	"context"
	"strings"

	"github.com/trailback/backend/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	ListProfiles(ctx context.Context, search, excludeID string) ([]models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
	UpdateProfile(ctx context.Context, id string, changes map[string]interface{}) error
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// ListProfiles returns every profile except excludeID, optionally filtered by a
// case-insensitive username match.
func (r *PostgresProfileRepository) ListProfiles(ctx context.Context, search, excludeID string) ([]models.Profile, error) {
	var profiles []models.Profile
	query := r.db.WithContext(ctx).Order("username")
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("username ILIKE ?", "%"+search+"%")
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// UpsertProfile creates the profile or refreshes its email when it already exists.
func (r *PostgresProfileRepository) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
	}).Create(profile).Error
}

func (r *PostgresProfileRepository) UpdateProfile(ctx context.Context, id string, changes map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
