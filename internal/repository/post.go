package repository

import (
	"context"
	"errors"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Post list orderings.
const (
	SortByID   = "id"
	SortByLike = "like"
)

// PostSummary is a row of a post listing.
type PostSummary struct {
	ID             uint
	Title          string
	CreatedAt      time.Time
	LikeCount      int64
	AuthorID       string
	AuthorName     string
	AuthorNickname string
}

// PostCursor positions a keyset page. LikeCount is only read for SortByLike.
type PostCursor struct {
	ID        uint
	LikeCount int64
}

// ListPostsQuery selects one page of a user's active posts.
type ListPostsQuery struct {
	UserID string
	SortBy string
	After  *PostCursor
	Limit  int
}

// SearchField selects which columns a search matches against.
type SearchField string

const (
	SearchTitleOrContent SearchField = "title_data"
	SearchNickname       SearchField = "nickname"
)

// SearchPostsQuery selects one page of search results, newest first.
type SearchPostsQuery struct {
	Query    string
	Field    SearchField
	BeforeID *uint
	Limit    int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetOwnedCursor(ctx context.Context, userID string, postID uint) (*PostCursor, error)
	ListByUser(ctx context.Context, q ListPostsQuery) ([]PostSummary, error)
	Search(ctx context.Context, q SearchPostsQuery) ([]PostSummary, error)
	UpdateContent(ctx context.Context, id uint, title, content string) error
	ReplaceFiles(ctx context.Context, postID uint, files []models.PostFile) error
	SoftDelete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post row only. Files and stats are written separately so
// callers control them inside one transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID loads a post with its author and files regardless of state.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := conn(ctx, r.db).
		Joins("User").
		Preload("Files", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_files.id ASC")
		}).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetOwnedCursor resolves postID into a cursor when it is one of userID's active posts.
func (r *postRepository) GetOwnedCursor(ctx context.Context, userID string, postID uint) (*PostCursor, error) {
	var rows []PostCursor
	err := conn(ctx, r.db).Table("posts").
		Select("posts.id AS id, post_stats.like_count AS like_count").
		Joins("JOIN post_stats ON post_stats.post_id = posts.id").
		Where("posts.id = ? AND posts.user_id = ? AND posts.state = ?", postID, userID, models.StateActive).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *postRepository) summaries(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).Table("posts").
		Select("posts.id AS id, posts.title AS title, posts.created_at AS created_at, " +
			"post_stats.like_count AS like_count, users.id AS author_id, " +
			"users.name AS author_name, users.nickname AS author_nickname").
		Joins("JOIN post_stats ON post_stats.post_id = posts.id").
		Joins("JOIN users ON users.id = posts.user_id")
}

func (r *postRepository) ListByUser(ctx context.Context, q ListPostsQuery) ([]PostSummary, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	db := r.summaries(ctx).
		Where("posts.user_id = ? AND posts.state = ?", q.UserID, models.StateActive)

	switch q.SortBy {
	case SortByLike:
		if q.After != nil {
			db = db.Where("(post_stats.like_count < ? OR (post_stats.like_count = ? AND posts.id < ?))",
				q.After.LikeCount, q.After.LikeCount, q.After.ID)
		}
		db = db.Order("post_stats.like_count DESC").Order("posts.id DESC")
	default:
		if q.After != nil {
			db = db.Where("posts.id < ?", q.After.ID)
		}
		db = db.Order("posts.id DESC")
	}

	var rows []PostSummary
	if err := db.Limit(limit).Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *postRepository) Search(ctx context.Context, q SearchPostsQuery) ([]PostSummary, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	pattern := likePattern(q.Query)
	db := r.summaries(ctx).
		Where("posts.state = ? AND users.state = ?", models.StateActive, models.StateActive)

	switch q.Field {
	case SearchNickname:
		db = db.Where(`LOWER(users.nickname) LIKE ? ESCAPE '\'`, pattern)
	default:
		db = db.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if q.BeforeID != nil {
		db = db.Where("posts.id < ?", *q.BeforeID)
	}

	var rows []PostSummary
	if err := db.Order("posts.id DESC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id uint, title, content string) error {
	err := conn(ctx, r.db).Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"title": title, "content": content}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ReplaceFiles deletes every file of the post and inserts files in their place.
func (r *postRepository) ReplaceFiles(ctx context.Context, postID uint, files []models.PostFile) error {
	db := conn(ctx, r.db)
	if err := db.Where("post_id = ?", postID).Delete(&models.PostFile{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	if len(files) == 0 {
		return nil
	}
	for i := range files {
		files[i].ID = 0
		files[i].PostID = postID
	}
	if err := db.Create(&files).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id uint) error {
	err := conn(ctx, r.db).Model(&models.Post{}).
		Where("id = ?", id).
		Update("state", models.StateDeleted).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
