package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

type missingUserPolicy int

const (
	notFoundUser missingUserPolicy = iota
	unauthorizedUser
)

// activeUser loads the acting user. Absent and deleted users produce the error
// the calling operation reports for them.
func activeUser(ctx context.Context, users repository.UserRepository, id string, policy missingUserPolicy) (*models.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.State.IsActive() {
		if policy == unauthorizedUser {
			return nil, models.NewUnauthorizedError("user does not exist")
		}
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}
