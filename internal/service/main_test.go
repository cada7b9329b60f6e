package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db       *gorm.DB
	tx       repository.Transactor
	users    repository.UserRepository
	posts    repository.PostRepository
	stats    repository.PostStatsRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	tokens   *TokenService

	auth       *AuthService
	postSvc    *PostService
	commentSvc *CommentService
	likeSvc    *LikeService
	userSvc    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	f := &fixture{
		db:       db,
		tx:       repository.NewTransactor(db),
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		stats:    repository.NewPostStatsRepository(db),
		comments: repository.NewCommentRepository(db),
		likes:    repository.NewLikeRepository(db),
		tokens: NewTokenService(TokenConfig{
			AccessSecret:  "access-secret-for-tests",
			AccessTTL:     time.Hour,
			RefreshSecret: "refresh-secret-for-tests",
			RefreshTTL:    24 * time.Hour,
		}),
	}
	f.auth = NewAuthService(f.users, f.tokens, 10)
	f.postSvc = NewPostService(f.tx, f.users, f.posts, f.stats, f.comments)
	f.commentSvc = NewCommentService(f.tx, f.users, f.posts, f.stats, f.comments)
	f.likeSvc = NewLikeService(f.tx, f.users, f.posts, f.stats, f.likes)
	f.userSvc = NewUserService(f.users, f.posts, f.comments)
	return f
}

// createUser inserts an active user directly, skipping password hashing.
func (f *fixture) createUser(t *testing.T, nickname string) models.AuthenticatedIdentity {
	t.Helper()
	user := &models.User{
		Email:    nickname + "@example.com",
		Nickname: nickname,
		Name:     "Name " + nickname,
		Password: "unused",
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return models.AuthenticatedIdentity{UserID: user.ID, Email: user.Email}
}

func (f *fixture) deactivate(t *testing.T, identity models.AuthenticatedIdentity) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.User{}).
		Where("id = ?", identity.UserID).
		Update("state", models.StateDeleted).Error)
}

func (f *fixture) createPost(t *testing.T, author models.AuthenticatedIdentity, title string) uint {
	t.Helper()
	resp, err := f.postSvc.CreatePost(context.Background(), author, CreatePostInput{Title: title, Content: "body of " + title})
	require.NoError(t, err)
	return resp.ID
}

func (f *fixture) statsOf(t *testing.T, postID uint) *models.PostStats {
	t.Helper()
	stats, err := f.stats.GetByPostID(context.Background(), postID)
	require.NoError(t, err)
	require.NotNil(t, stats)
	return stats
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}
