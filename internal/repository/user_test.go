package repository

import (
	"context"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "ada", models.StateActive)
	assert.Len(t, user.ID, 36)

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Nil(t, byEmail.RefreshToken)

	byNickname, err := repo.GetByNickname(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, byNickname)
	assert.Equal(t, user.ID, byNickname.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	missingID, err := repo.GetByID(ctx, "no-such-id")
	assert.NoError(t, err)
	assert.Nil(t, missingID)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	seedUser(t, db, "ada", models.StateActive)

	err := repo.Create(context.Background(), &models.User{
		Email:    "ada@example.com",
		Nickname: "other",
		Name:     "Other",
		Password: "hash",
	})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestUserRepository_IsActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	active := seedUser(t, db, "ada", models.StateActive)
	deleted := seedUser(t, db, "bob", models.StateDeleted)

	ok, err := repo.IsActive(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsActive(ctx, deleted.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.IsActive(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_SetRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "ada", models.StateActive)

	token := "refresh-1"
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, &token))
	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, token, *stored.RefreshToken)
	assert.True(t, stored.LoggedIn())

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, nil))
	stored, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)
	assert.False(t, stored.LoggedIn())
}
