package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
	Nickname string `json:"nickname" validate:"required,min=2,max=30"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Signup handles POST /auth/signup
// @Summary User signup
// @Description Register a new account, or revive a deleted one with the same email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "Signup request"
// @Success 201 {object} service.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	resp, err := s.authService.SignUp(c.UserContext(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Nickname: req.Nickname,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /auth/login
// @Summary User login
// @Description Authenticate and receive an access and refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Login credentials"
// @Success 200 {object} service.TokenPair
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	pair, err := s.authService.Login(c.UserContext(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(pair)
}

// RefreshToken handles POST /auth/refresh-token
// @Summary Rotate tokens
// @Description Exchange the current refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body refreshTokenRequest true "Refresh token"
// @Success 200 {object} service.TokenPair
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh-token [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req refreshTokenRequest
	if err := s.parseBody(c, &req); err != nil {
		return nil
	}

	pair, err := s.authService.ReissueToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(pair)
}

// Logout handles POST /auth/logout
// @Summary User logout
// @Description Clear the stored refresh token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	identity, err := s.identityFrom(c)
	if err != nil {
		return nil
	}

	resp, err := s.authService.Logout(c.UserContext(), identity)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(resp)
}
