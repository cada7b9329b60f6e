package service

import (
	"context"
	"strings"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

// UserService serves the caller's own account and public profiles.
type UserService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
}

type MeResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

// Profile is the publicly cacheable view of a user.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
}

// UpdateMeInput carries optional changes; nil fields are left alone.
type UpdateMeInput struct {
	Name     *string
	Nickname *string
}

func NewUserService(users repository.UserRepository, posts repository.PostRepository, comments repository.CommentRepository) *UserService {
	return &UserService{users: users, posts: posts, comments: comments}
}

func (s *UserService) GetMe(ctx context.Context, identity models.AuthenticatedIdentity) (*MeResponse, error) {
	user, err := activeUser(ctx, s.users, identity.UserID, unauthorizedUser)
	if err != nil {
		return nil, err
	}
	return &MeResponse{Email: user.Email, Name: user.Name, Nickname: user.Nickname}, nil
}

func (s *UserService) UpdateMe(ctx context.Context, identity models.AuthenticatedIdentity, in UpdateMeInput) (MessageResponse, error) {
	user, err := activeUser(ctx, s.users, identity.UserID, unauthorizedUser)
	if err != nil {
		return MessageResponse{}, err
	}

	changed := false
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != user.Name {
			user.Name = name
			changed = true
		}
	}
	if in.Nickname != nil {
		nickname := strings.TrimSpace(*in.Nickname)
		if nickname != user.Nickname {
			holder, err := s.users.GetByNickname(ctx, nickname)
			if err != nil {
				return MessageResponse{}, err
			}
			if holder != nil && holder.ID != user.ID {
				return MessageResponse{}, models.NewConflictError("nickname already in use")
			}
			user.Nickname = nickname
			changed = true
		}
	}
	if !changed {
		return MessageResponse{Message: "no changes"}, nil
	}

	if err := s.users.Update(ctx, user); err != nil {
		return MessageResponse{}, err
	}
	cache.InvalidateUser(ctx, user.ID)
	return MessageResponse{Message: "profile updated"}, nil
}

// DeleteMe deactivates the account and ends its session.
func (s *UserService) DeleteMe(ctx context.Context, identity models.AuthenticatedIdentity) (resp MessageResponse, err error) {
	defer func() { observability.RecordAuthEvent("delete_account", err) }()

	user, err := activeUser(ctx, s.users, identity.UserID, unauthorizedUser)
	if err != nil {
		return MessageResponse{}, err
	}
	user.State = models.StateDeleted
	user.RefreshToken = nil
	if err := s.users.Update(ctx, user); err != nil {
		return MessageResponse{}, err
	}
	cache.InvalidateUser(ctx, user.ID)
	return MessageResponse{Message: "account deleted"}, nil
}

// GetProfile returns an active user's public profile through the profile cache.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var profile Profile
	err := cache.Aside(ctx, cache.ProfileKey(userID), &profile, cache.ProfileTTL, func() error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil || !user.State.IsActive() {
			return models.NewNotFoundError("User", userID)
		}
		profile = Profile{ID: user.ID, Name: user.Name, Nickname: user.Nickname}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *UserService) GetMyPosts(ctx context.Context, identity models.AuthenticatedIdentity, cursor string) (*PostListResponse, error) {
	if _, err := activeUser(ctx, s.users, identity.UserID, unauthorizedUser); err != nil {
		return nil, err
	}
	q := repository.ListPostsQuery{UserID: identity.UserID, SortBy: repository.SortByID, Limit: repository.DefaultPageSize}
	if id, ok := parseCursor(cursor); ok {
		q.After = &repository.PostCursor{ID: id}
	}
	rows, err := s.posts.ListByUser(ctx, q)
	if err != nil {
		return nil, err
	}
	return newPostListResponse(rows, false), nil
}

func (s *UserService) GetMyComments(ctx context.Context, identity models.AuthenticatedIdentity, cursor string) (*CommentListResponse, error) {
	if _, err := activeUser(ctx, s.users, identity.UserID, unauthorizedUser); err != nil {
		return nil, err
	}
	var before *uint
	if id, ok := parseCursor(cursor); ok {
		before = &id
	}
	rows, err := s.comments.ListByUser(ctx, identity.UserID, before, repository.DefaultPageSize)
	if err != nil {
		return nil, err
	}

	resp := &CommentListResponse{Comments: make([]CommentListItem, 0, len(rows))}
	for _, c := range rows {
		resp.Comments = append(resp.Comments, CommentListItem{
			ID:        c.ID,
			Content:   c.Content,
			PostID:    c.PostID,
			ParentID:  c.ParentID,
			CreatedAt: c.CreatedAt,
		})
	}
	resp.NextCursor = nextCursor(len(rows), func() uint { return rows[len(rows)-1].ID })
	return resp, nil
}
