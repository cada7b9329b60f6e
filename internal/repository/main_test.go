package repository

import (
	"context"
	"testing"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func seedUser(t *testing.T, db *gorm.DB, nickname string, state models.EntityState) *models.User {
	t.Helper()
	user := &models.User{
		Email:    nickname + "@example.com",
		Nickname: nickname,
		Name:     "Name " + nickname,
		Password: "hash",
		State:    state,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func seedPost(t *testing.T, db *gorm.DB, owner *models.User, title string) *models.Post {
	t.Helper()
	ctx := context.Background()
	post := &models.Post{Title: title, Content: "content of " + title, UserID: owner.ID}
	require.NoError(t, NewPostRepository(db).Create(ctx, post))
	_, err := NewPostStatsRepository(db).Create(ctx, post.ID)
	require.NoError(t, err)
	return post
}
