package server

import (
	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /like/:postId
// @Summary Like post
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} service.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /like/{postId} [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	resp, err := s.likeService.Like(c.UserContext(), identity, postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}

// UnlikePost handles DELETE /like/:postId
// @Summary Unlike post
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} service.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /like/{postId} [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	resp, err := s.likeService.Unlike(c.UserContext(), identity, postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}
