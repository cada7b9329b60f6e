package repository

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/models"

	"gorm.io/gorm"
)

// StatsCounter names a PostStats counter column.
type StatsCounter string

const (
	ViewCounter    StatsCounter = "view_count"
	LikeCounter    StatsCounter = "like_count"
	CommentCounter StatsCounter = "comment_count"
)

func (c StatsCounter) valid() bool {
	switch c {
	case ViewCounter, LikeCounter, CommentCounter:
		return true
	}
	return false
}

// PostStatsRepository reads and atomically adjusts post counters.
type PostStatsRepository interface {
	Create(ctx context.Context, postID uint) (*models.PostStats, error)
	GetByPostID(ctx context.Context, postID uint) (*models.PostStats, error)
	Increment(ctx context.Context, postID uint, counter StatsCounter, delta int) error
}

type postStatsRepository struct {
	db *gorm.DB
}

// NewPostStatsRepository creates a new PostStatsRepository.
func NewPostStatsRepository(db *gorm.DB) PostStatsRepository {
	return &postStatsRepository{db: db}
}

func (r *postStatsRepository) Create(ctx context.Context, postID uint) (*models.PostStats, error) {
	stats := &models.PostStats{PostID: postID}
	if err := conn(ctx, r.db).Create(stats).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}

func (r *postStatsRepository) GetByPostID(ctx context.Context, postID uint) (*models.PostStats, error) {
	var stats models.PostStats
	if err := conn(ctx, r.db).Where("post_id = ?", postID).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &stats, nil
}

// Increment applies counter = counter + delta in a single UPDATE.
// A missing stats row is reported as an integrity error.
func (r *postStatsRepository) Increment(ctx context.Context, postID uint, counter StatsCounter, delta int) error {
	if !counter.valid() {
		return models.NewInternalError(fmt.Errorf("unknown stats counter %q", counter))
	}
	column := string(counter)
	result := conn(ctx, r.db).Model(&models.PostStats{}).
		Where("post_id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewIntegrityError("post stats missing")
	}
	return nil
}
