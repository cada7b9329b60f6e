package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateMeRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Nickname *string `json:"nickname" validate:"omitempty,min=2,max=30"`
}

// GetMe handles GET /user/me
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.MeResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}

	me, err := s.userService.GetMe(c.UserContext(), identity)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(me)
}

// UpdateMe handles PATCH /user/me
// @Summary Update current user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateMeRequest true "Changes"
// @Success 200 {object} service.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /user/me [patch]
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}
	var req updateMeRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	resp, err := s.userService.UpdateMe(c.UserContext(), identity, service.UpdateMeInput{
		Name:     req.Name,
		Nickname: req.Nickname,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}

// DeleteMe handles DELETE /user/me
// @Summary Delete current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/me [delete]
func (s *Server) DeleteMe(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}

	resp, err := s.userService.DeleteMe(c.UserContext(), identity)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}

// GetMyPosts handles GET /user/me/posts
// @Summary My posts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Last seen post id"
// @Success 200 {object} service.PostListResponse
// @Router /user/me/posts [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}

	resp, err := s.userService.GetMyPosts(c.UserContext(), identity, c.Query("cursor"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}

// GetMyComments handles GET /user/me/comments
// @Summary My comments
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Last seen comment id"
// @Success 200 {object} service.CommentListResponse
// @Router /user/me/comments [get]
func (s *Server) GetMyComments(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}

	resp, err := s.userService.GetMyComments(c.UserContext(), identity, c.Query("cursor"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}

// GetUserProfile handles GET /user/:id
// @Summary Public profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} service.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /user/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}
