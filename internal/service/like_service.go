package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

// LikeService toggles likes. The like row and the post's like count change together.
type LikeService struct {
	tx    repository.Transactor
	users repository.UserRepository
	posts repository.PostRepository
	stats repository.PostStatsRepository
	likes repository.LikeRepository
}

func NewLikeService(
	tx repository.Transactor,
	users repository.UserRepository,
	posts repository.PostRepository,
	stats repository.PostStatsRepository,
	likes repository.LikeRepository,
) *LikeService {
	return &LikeService{tx: tx, users: users, posts: posts, stats: stats, likes: likes}
}

func (s *LikeService) Like(ctx context.Context, identity models.AuthenticatedIdentity, postID uint) (resp MessageResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "LikeService", "Like")
	defer func() { observability.EndSpan(span, err) }()

	if err := s.checkTargets(ctx, identity, postID); err != nil {
		return MessageResponse{}, err
	}
	exists, err := s.likes.Exists(ctx, identity.UserID, postID)
	if err != nil {
		return MessageResponse{}, err
	}
	if exists {
		return MessageResponse{}, models.NewForbiddenError("already liked")
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.likes.Create(ctx, &models.Like{UserID: identity.UserID, PostID: postID}); err != nil {
			return err
		}
		return s.stats.Increment(ctx, postID, repository.LikeCounter, 1)
	})
	if err != nil {
		return MessageResponse{}, err
	}

	observability.RecordMutation("like", "create")
	return MessageResponse{Message: "post liked"}, nil
}

func (s *LikeService) Unlike(ctx context.Context, identity models.AuthenticatedIdentity, postID uint) (resp MessageResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "LikeService", "Unlike")
	defer func() { observability.EndSpan(span, err) }()

	if err := s.checkTargets(ctx, identity, postID); err != nil {
		return MessageResponse{}, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		removed, err := s.likes.Delete(ctx, identity.UserID, postID)
		if err != nil {
			return err
		}
		if !removed {
			return models.NewNotFoundMessage("like not found")
		}
		return s.stats.Increment(ctx, postID, repository.LikeCounter, -1)
	})
	if err != nil {
		return MessageResponse{}, err
	}

	observability.RecordMutation("like", "delete")
	return MessageResponse{Message: "post unliked"}, nil
}

func (s *LikeService) checkTargets(ctx context.Context, identity models.AuthenticatedIdentity, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil || !post.State.IsActive() {
		return models.NewNotFoundError("Post", postID)
	}
	_, err = activeUser(ctx, s.users, identity.UserID, notFoundUser)
	return err
}
