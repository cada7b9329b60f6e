package server

import (
	"time"

	"agora/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/swagger"
)

// Per-route limits for the endpoints that create accounts, sessions or content.
var (
	signupLimit        = middleware.Rule{Name: "signup", Max: 3, Window: 10 * time.Minute}
	loginLimit         = middleware.Rule{Name: "login", Max: 10, Window: 5 * time.Minute}
	refreshLimit       = middleware.Rule{Name: "refresh", Max: 20, Window: 5 * time.Minute}
	createPostLimit    = middleware.Rule{Name: "create_post", Max: 5, Window: time.Minute}
	createCommentLimit = middleware.Rule{Name: "create_comment", Max: 10, Window: time.Minute}
)

// SetupRoutes registers the API, health, metrics and documentation routes.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "Agora Metrics"}))
	app.Get("/swagger/*", swagger.HandlerDefault)

	limit := func(rule middleware.Rule) fiber.Handler {
		return middleware.RateLimit(s.redis, rule)
	}
	guard := s.AuthRequired()

	auth := app.Group("/auth")
	auth.Post("/signup", limit(signupLimit), s.Signup)
	auth.Post("/login", limit(loginLimit), s.Login)
	auth.Post("/refresh-token", limit(refreshLimit), s.RefreshToken)
	auth.Post("/logout", guard, s.Logout)

	posts := app.Group("/post", guard)
	posts.Post("/", limit(createPostLimit), s.CreatePost)
	// Literal paths first so they are not captured by /:postId.
	posts.Get("/list/posts", s.GetPosts)
	posts.Get("/search", s.SearchPosts)
	posts.Get("/:postId", s.GetPost)
	posts.Patch("/:postId", s.UpdatePost)
	posts.Delete("/:postId", s.DeletePost)

	comments := app.Group("/comment", guard)
	comments.Post("/", limit(createCommentLimit), s.CreateComment)
	comments.Delete("/:commentId", s.DeleteComment)

	likes := app.Group("/like", guard)
	likes.Post("/:postId", s.LikePost)
	likes.Delete("/:postId", s.UnlikePost)

	users := app.Group("/user", guard)
	users.Get("/me", s.GetMe)
	users.Patch("/me", s.UpdateMe)
	users.Delete("/me", s.DeleteMe)
	users.Get("/me/posts", s.GetMyPosts)
	users.Get("/me/comments", s.GetMyComments)
	users.Get("/:id", s.GetUserProfile)
}

// AuthRequired returns the access guard for protected routes.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.tokens.VerifyAccessIdentity, s.userRepo.IsActive)
}
