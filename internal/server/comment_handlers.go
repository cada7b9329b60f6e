package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	PostID   uint   `json:"postId" validate:"required"`
	ParentID *uint  `json:"parentId"`
	Content  string `json:"content" validate:"required,max=10000"`
}

// CreateComment handles POST /comment
// @Summary Create comment
// @Description Comment on a post, or reply to a comment of the same post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createCommentRequest true "Comment"
// @Success 201 {object} service.CreateCommentResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comment [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}
	var req createCommentRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	resp, err := s.commentService.CreateComment(c.UserContext(), identity, service.CreateCommentInput{
		PostID:   req.PostID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DeleteComment handles DELETE /comment/:commentId
// @Summary Delete comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Success 200 {object} service.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comment/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	resp, err := s.commentService.DeleteComment(c.UserContext(), identity, commentID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}
