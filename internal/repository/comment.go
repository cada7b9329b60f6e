package repository

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListVisibleByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	ListByUser(ctx context.Context, userID string, beforeID *uint, limit int) ([]models.Comment, error)
	SoftDelete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns the comment in any state, or (nil, nil).
func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := conn(ctx, r.db).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListVisibleByPost loads active comments by active authors in creation order.
func (r *commentRepository) ListVisibleByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := conn(ctx, r.db).
		InnerJoins("User", r.db.Where(&models.User{State: models.StateActive})).
		Where("comments.post_id = ? AND comments.state = ?", postID, models.StateActive).
		Order("comments.created_at ASC").
		Order("comments.id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) ListByUser(ctx context.Context, userID string, beforeID *uint, limit int) ([]models.Comment, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	db := conn(ctx, r.db).
		Where("user_id = ? AND state = ?", userID, models.StateActive)
	if beforeID != nil {
		db = db.Where("id < ?", *beforeID)
	}

	var comments []models.Comment
	if err := db.Order("id DESC").Limit(limit).Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) SoftDelete(ctx context.Context, id uint) error {
	err := conn(ctx, r.db).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("state", models.StateDeleted).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
