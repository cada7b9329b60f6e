package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"
)

// PostService owns the post aggregate: the post row, its files and its stats.
type PostService struct {
	tx       repository.Transactor
	users    repository.UserRepository
	posts    repository.PostRepository
	stats    repository.PostStatsRepository
	comments repository.CommentRepository
}

// FileInput describes an attachment. Size is optional.
type FileInput struct {
	URL          string
	OriginalName string
	MimeType     string
	Size         *int64
}

type CreatePostInput struct {
	Title   string
	Content string
	Files   []FileInput
}

type UpdatePostInput struct {
	Title   string
	Content string
	Files   []FileInput
}

type SearchPostsInput struct {
	Query  string
	Type   string
	Cursor string
}

type CreatePostResponse struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

// AuthorSummary identifies the author of a listed post.
type AuthorSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname,omitempty"`
}

type PostListItem struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	LikeCount int64         `json:"likeCount"`
	Author    AuthorSummary `json:"author"`
}

// PostListResponse is one keyset page. NextCursor is nil on the last page.
type PostListResponse struct {
	Posts      []PostListItem `json:"posts"`
	NextCursor *uint          `json:"nextCursor"`
}

type PostStatsView struct {
	ViewCount    int64 `json:"viewCount"`
	LikeCount    int64 `json:"likeCount"`
	CommentCount int64 `json:"commentCount"`
}

type PostDetail struct {
	ID        uint              `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	CreatedAt time.Time         `json:"createdAt"`
	Author    AuthorRef         `json:"author"`
	Files     []models.PostFile `json:"files"`
	Stats     PostStatsView     `json:"stats"`
	Comments  []*CommentNode    `json:"comments"`
}

func NewPostService(
	tx repository.Transactor,
	users repository.UserRepository,
	posts repository.PostRepository,
	stats repository.PostStatsRepository,
	comments repository.CommentRepository,
) *PostService {
	return &PostService{
		tx:       tx,
		users:    users,
		posts:    posts,
		stats:    stats,
		comments: comments,
	}
}

func (s *PostService) CreatePost(ctx context.Context, identity models.AuthenticatedIdentity, in CreatePostInput) (resp CreatePostResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "CreatePost")
	defer func() { observability.EndSpan(span, err) }()

	if _, err := activeUser(ctx, s.users, identity.UserID, notFoundUser); err != nil {
		return CreatePostResponse{}, err
	}
	files, err := toPostFiles(in.Files)
	if err != nil {
		return CreatePostResponse{}, err
	}

	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  identity.UserID,
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.Create(ctx, post); err != nil {
			return err
		}
		if err := s.posts.ReplaceFiles(ctx, post.ID, files); err != nil {
			return err
		}
		_, err := s.stats.Create(ctx, post.ID)
		return err
	})
	if err != nil {
		return CreatePostResponse{}, err
	}

	observability.RecordMutation("post", "create")
	return CreatePostResponse{ID: post.ID, Message: "post created"}, nil
}

// GetPostByID returns the post detail and counts the read as one view.
func (s *PostService) GetPostByID(ctx context.Context, postID uint) (detail *PostDetail, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "GetPostByID")
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || !post.State.IsActive() || !post.User.State.IsActive() {
		return nil, models.NewNotFoundError("Post", postID)
	}

	stats, err := s.stats.GetByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, models.NewIntegrityError("post stats missing")
	}
	if err := s.stats.Increment(ctx, postID, repository.ViewCounter, 1); err != nil {
		return nil, err
	}
	observability.PostViews.Inc()

	comments, err := s.comments.ListVisibleByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	files := post.Files
	if files == nil {
		files = []models.PostFile{}
	}
	return &PostDetail{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
		Author:    AuthorRef{ID: post.User.ID, Nickname: post.User.Nickname},
		Files:     files,
		Stats: PostStatsView{
			ViewCount:    stats.ViewCount + 1,
			LikeCount:    stats.LikeCount,
			CommentCount: stats.CommentCount,
		},
		Comments: BuildCommentTree(comments),
	}, nil
}

// UpdatePost replaces the title, content and the whole file set of a post.
func (s *PostService) UpdatePost(ctx context.Context, identity models.AuthenticatedIdentity, postID uint, in UpdatePostInput) (resp MessageResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "UpdatePost")
	defer func() { observability.EndSpan(span, err) }()

	if _, err := activeUser(ctx, s.users, identity.UserID, notFoundUser); err != nil {
		return MessageResponse{}, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return MessageResponse{}, err
	}
	if post == nil || !post.State.IsActive() || post.UserID != identity.UserID {
		return MessageResponse{}, models.NewNotFoundError("Post", postID)
	}
	files, err := toPostFiles(in.Files)
	if err != nil {
		return MessageResponse{}, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.ReplaceFiles(ctx, postID, files); err != nil {
			return err
		}
		return s.posts.UpdateContent(ctx, postID, in.Title, in.Content)
	})
	if err != nil {
		return MessageResponse{}, err
	}

	observability.RecordMutation("post", "update")
	return MessageResponse{Message: "post updated"}, nil
}

func (s *PostService) DeletePost(ctx context.Context, identity models.AuthenticatedIdentity, postID uint) (resp MessageResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "DeletePost")
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return MessageResponse{}, err
	}
	if post == nil {
		return MessageResponse{}, models.NewNotFoundError("Post", postID)
	}
	if post.UserID != identity.UserID {
		return MessageResponse{}, models.NewUnauthorizedError("not the post owner")
	}
	if !post.State.IsActive() {
		return MessageResponse{}, models.NewNotFoundError("Post", postID)
	}
	if err := s.posts.SoftDelete(ctx, postID); err != nil {
		return MessageResponse{}, err
	}

	observability.RecordMutation("post", "delete")
	return MessageResponse{Message: "post deleted"}, nil
}

// GetPosts lists the caller's active posts. A cursor that is not one of the
// caller's active posts restarts the listing from the newest post.
func (s *PostService) GetPosts(ctx context.Context, identity models.AuthenticatedIdentity, sortBy, cursor string) (page *PostListResponse, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "GetPosts")
	defer func() { observability.EndSpan(span, err) }()

	if _, err := activeUser(ctx, s.users, identity.UserID, unauthorizedUser); err != nil {
		return nil, err
	}

	switch sortBy {
	case "":
		sortBy = repository.SortByID
	case repository.SortByID, repository.SortByLike:
	default:
		return nil, models.NewValidationError("sortBy must be id or like")
	}

	q := repository.ListPostsQuery{UserID: identity.UserID, SortBy: sortBy, Limit: repository.DefaultPageSize}
	if id, ok := parseCursor(cursor); ok {
		after, err := s.posts.GetOwnedCursor(ctx, identity.UserID, id)
		if err != nil {
			return nil, err
		}
		q.After = after
	}

	rows, err := s.posts.ListByUser(ctx, q)
	if err != nil {
		return nil, err
	}
	return newPostListResponse(rows, false), nil
}

// SearchPosts matches active posts by active authors, newest first.
func (s *PostService) SearchPosts(ctx context.Context, in SearchPostsInput) (*PostListResponse, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, models.NewValidationError("query is required")
	}
	field := repository.SearchField(in.Type)
	switch field {
	case repository.SearchTitleOrContent, repository.SearchNickname:
	default:
		return nil, models.NewValidationError("type must be title_data or nickname")
	}

	q := repository.SearchPostsQuery{Query: query, Field: field, Limit: repository.DefaultPageSize}
	if in.Cursor != "" {
		id, ok := parseCursor(in.Cursor)
		if !ok {
			return nil, models.NewValidationError("invalid cursor")
		}
		q.BeforeID = &id
	}

	rows, err := s.posts.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return newPostListResponse(rows, true), nil
}

func newPostListResponse(rows []repository.PostSummary, withNickname bool) *PostListResponse {
	resp := &PostListResponse{Posts: make([]PostListItem, 0, len(rows))}
	for _, row := range rows {
		item := PostListItem{
			ID:        row.ID,
			Title:     row.Title,
			LikeCount: row.LikeCount,
			Author:    AuthorSummary{ID: row.AuthorID, Name: row.AuthorName},
		}
		if withNickname {
			item.Author.Nickname = row.AuthorNickname
		}
		resp.Posts = append(resp.Posts, item)
	}
	resp.NextCursor = nextCursor(len(rows), func() uint { return rows[len(rows)-1].ID })
	return resp
}

func toPostFiles(in []FileInput) ([]models.PostFile, error) {
	if len(in) > validation.MaxFilesPerPost {
		return nil, models.NewValidationError("a post accepts at most 10 files")
	}
	files := make([]models.PostFile, 0, len(in))
	for _, f := range in {
		if !validation.IsAllowedMimeType(f.MimeType) {
			return nil, models.NewValidationError("file type " + f.MimeType + " is not allowed")
		}
		var size int64
		if f.Size != nil && *f.Size > 0 {
			size = *f.Size
		}
		files = append(files, models.PostFile{
			URL:          f.URL,
			OriginalName: f.OriginalName,
			MimeType:     strings.ToLower(strings.TrimSpace(f.MimeType)),
			Size:         size,
		})
	}
	return files, nil
}

// parseCursor reads a post or comment id cursor. Empty and malformed values are not cursors.
func parseCursor(raw string) (uint, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func nextCursor(n int, last func() uint) *uint {
	if n < repository.DefaultPageSize {
		return nil
	}
	id := last()
	return &id
}
