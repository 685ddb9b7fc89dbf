package repositories

import (
	"context"
	"time"

	"github.com/trailback/backend/pkg/models"
	"gorm.io/gorm"
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	ListForUser(ctx context.Context, userID string) ([]models.Friendship, error)
	ListBetween(ctx context.Context, a, b string) ([]models.Friendship, error)
	CreateRequest(ctx context.Context, f *models.Friendship) error
	AcceptRequest(ctx context.Context, senderID, recipientID string) error
	DeleteBetween(ctx context.Context, a, b string) (int64, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// ListForUser returns pending and accepted rows where the user is on either end.
func (r *PostgresFriendshipRepository) ListForUser(ctx context.Context, userID string) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Order("created_at").
		Find(&rows).Error
	return rows, err
}

func (r *PostgresFriendshipRepository) ListBetween(ctx context.Context, a, b string) ([]models.Friendship, error) {
	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Find(&rows).Error
	return rows, err
}

// CreateRequest inserts a pending row. The (user_id, friend_id) unique index
// turns a concurrent duplicate into ErrAlreadyExists.
func (r *PostgresFriendshipRepository) CreateRequest(ctx context.Context, f *models.Friendship) error {
	f.Status = models.FriendshipPending
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

// AcceptRequest flips the pending row sent by senderID to recipientID.
func (r *PostgresFriendshipRepository) AcceptRequest(ctx context.Context, senderID, recipientID string) error {
	res := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ? AND status = ?", senderID, recipientID, models.FriendshipPending).
		Updates(map[string]interface{}{"status": models.FriendshipAccepted, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBetween removes every row linking a and b, in both orientations.
func (r *PostgresFriendshipRepository) DeleteBetween(ctx context.Context, a, b string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Delete(&models.Friendship{})
	return res.RowsAffected, res.Error
}
