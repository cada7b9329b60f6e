package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type fileRequest struct {
	URL          string `json:"url" validate:"required"`
	OriginalName string `json:"originalName" validate:"required,max=255"`
	MimeType     string `json:"mimeType" validate:"required,allowed_mime"`
	Size         *int64 `json:"size"`
}

type postRequest struct {
	Title   string        `json:"title" validate:"required,max=300,excludesall=<>"`
	Content string        `json:"content" validate:"required,max=50000"`
	Files   []fileRequest `json:"files" validate:"max=10,dive"`
}

func (r postRequest) files() []service.FileInput {
	files := make([]service.FileInput, 0, len(r.Files))
	for _, f := range r.Files {
		files = append(files, service.FileInput{
			URL:          f.URL,
			OriginalName: f.OriginalName,
			MimeType:     f.MimeType,
			Size:         f.Size,
		})
	}
	return files
}

// CreatePost handles POST /post
// @Summary Create post
// @Description Create a post with up to 10 file references
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body postRequest true "Post"
// @Success 201 {object} service.CreatePostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /post [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}
	var req postRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	resp, err := s.postService.CreatePost(c.UserContext(), identity, service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Files:   req.files(),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetPosts handles GET /post/list/posts
// @Summary List my posts
// @Description Keyset page of the caller's posts sorted by id or like count
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Last seen post id"
// @Param sortBy query string false "id or like"
// @Success 200 {object} service.PostListResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /post/list/posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}

	resp, err := s.postService.GetPosts(c.UserContext(), identity, c.Query("sortBy"), c.Query("cursor"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}

// SearchPosts handles GET /post/search
// @Summary Search posts
// @Description Substring search on title and content, or on author nickname
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param query query string true "Search text"
// @Param type query string true "title_data or nickname"
// @Param cursor query string false "Last seen post id"
// @Success 200 {object} service.PostListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /post/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	resp, err := s.postService.SearchPosts(c.UserContext(), service.SearchPostsInput{
		Query:  c.Query("query"),
		Type:   c.Query("type"),
		Cursor: c.Query("cursor"),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}

// GetPost handles GET /post/:postId
// @Summary Get post
// @Description Post detail with files, stats and the comment tree. Counts one view.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} service.PostDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /post/{postId} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	detail, err := s.postService.GetPostByID(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(detail)
}

// UpdatePost handles PATCH /post/:postId
// @Summary Update post
// @Description Replace title, content and files of an owned post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Param request body postRequest true "Post"
// @Success 200 {object} service.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /post/{postId} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	resp, err := s.postService.UpdatePost(c.UserContext(), identity, postID, service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Files:   req.files(),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}

// DeletePost handles DELETE /post/:postId
// @Summary Delete post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} service.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /post/{postId} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	resp, err := s.postService.DeletePost(c.UserContext(), identity, postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}
