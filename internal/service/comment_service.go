package service

import (
	"context"
	"time"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

type CommentService struct {
	tx       repository.Transactor
	users    repository.UserRepository
	posts    repository.PostRepository
	stats    repository.PostStatsRepository
	comments repository.CommentRepository
}

type CreateCommentInput struct {
	PostID   uint
	ParentID *uint
	Content  string
}

type CreateCommentResponse struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

// CommentListItem is a comment listed outside its post's tree.
type CommentListItem struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	PostID    uint      `json:"postId"`
	ParentID  *uint     `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentListResponse struct {
	Comments   []CommentListItem `json:"comments"`
	NextCursor *uint             `json:"nextCursor"`
}

func NewCommentService(
	tx repository.Transactor,
	users repository.UserRepository,
	posts repository.PostRepository,
	stats repository.PostStatsRepository,
	comments repository.CommentRepository,
) *CommentService {
	return &CommentService{
		tx:       tx,
		users:    users,
		posts:    posts,
		stats:    stats,
		comments: comments,
	}
}

// CreateComment adds a comment, or a reply when ParentID is set, and bumps the
// post's comment count in the same transaction.
func (s *CommentService) CreateComment(ctx context.Context, identity models.AuthenticatedIdentity, in CreateCommentInput) (resp CreateCommentResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "CreateComment")
	defer func() { observability.EndSpan(span, err) }()

	if _, err := activeUser(ctx, s.users, identity.UserID, notFoundUser); err != nil {
		return CreateCommentResponse{}, err
	}
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return CreateCommentResponse{}, err
	}
	if post == nil || !post.State.IsActive() {
		return CreateCommentResponse{}, models.NewNotFoundError("Post", in.PostID)
	}

	if in.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *in.ParentID)
		if err != nil {
			return CreateCommentResponse{}, err
		}
		if parent == nil {
			return CreateCommentResponse{}, models.NewNotFoundError("Comment", *in.ParentID)
		}
		if !parent.State.IsActive() {
			return CreateCommentResponse{}, models.NewValidationError("parent comment is deleted")
		}
		if parent.PostID != in.PostID {
			return CreateCommentResponse{}, models.NewValidationError("parent comment belongs to another post")
		}
	}

	comment := &models.Comment{
		Content:  in.Content,
		PostID:   in.PostID,
		UserID:   identity.UserID,
		ParentID: in.ParentID,
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		return s.stats.Increment(ctx, in.PostID, repository.CommentCounter, 1)
	})
	if err != nil {
		return CreateCommentResponse{}, err
	}

	observability.RecordMutation("comment", "create")
	return CreateCommentResponse{ID: comment.ID, Message: "comment created"}, nil
}

// DeleteComment soft-deletes the caller's comment. Replies stay and surface as roots.
func (s *CommentService) DeleteComment(ctx context.Context, identity models.AuthenticatedIdentity, commentID uint) (resp MessageResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommentService", "DeleteComment")
	defer func() { observability.EndSpan(span, err) }()

	if _, err := activeUser(ctx, s.users, identity.UserID, unauthorizedUser); err != nil {
		return MessageResponse{}, err
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return MessageResponse{}, err
	}
	if comment == nil || !comment.State.IsActive() {
		return MessageResponse{}, models.NewNotFoundError("Comment", commentID)
	}
	if comment.UserID != identity.UserID {
		return MessageResponse{}, models.NewForbiddenError("not the comment author")
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.comments.SoftDelete(ctx, commentID); err != nil {
			return err
		}
		return s.stats.Increment(ctx, comment.PostID, repository.CommentCounter, -1)
	})
	if err != nil {
		return MessageResponse{}, err
	}

	observability.RecordMutation("comment", "delete")
	return MessageResponse{Message: "comment deleted"}, nil
}
