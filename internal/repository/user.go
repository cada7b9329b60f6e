package repository

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByNickname(ctx context.Context, nickname string) (*models.User, error)
	IsActive(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetRefreshToken(ctx context.Context, id string, token *string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) GetByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return r.first(ctx, "nickname = ?", nickname)
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) IsActive(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.User{}).
		Where("id = ? AND state = ?", id, models.StateActive).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := conn(ctx, r.db).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("email or nickname already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := conn(ctx, r.db).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("nickname already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	if err := conn(ctx, r.db).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("refresh_token", token).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
