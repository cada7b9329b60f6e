package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// LikeRepository enforces one like per (user, post).
type LikeRepository interface {
	Exists(ctx context.Context, userID string, postID uint) (bool, error)
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, userID string, postID uint) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, userID string, postID uint) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Create inserts the like. A concurrent duplicate trips the unique index and
// is reported as Forbidden, same as the pre-checked case.
func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := conn(ctx, r.db).Create(like).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewForbiddenError("already liked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete hard-deletes the like and reports whether a row was removed.
func (r *likeRepository) Delete(ctx context.Context, userID string, postID uint) (bool, error) {
	result := conn(ctx, r.db).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}
