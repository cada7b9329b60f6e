// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "agora/docs" // swagger docs
	"agora/internal/bootstrap"
	"agora/internal/config"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server owns the HTTP app and the services behind its handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	tokens         *service.TokenService
	authService    *service.AuthService
	postService    *service.PostService
	commentService *service.CommentService
	likeService    *service.LikeService
	userService    *service.UserService
}

// NewServer connects the runtime dependencies and builds a Server on them.
func NewServer(ctx context.Context, cfg *config.Config, opts bootstrap.Options) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps wires repositories and services over an open database.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("server requires config and database")
	}

	tx := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	statsRepo := repository.NewPostStatsRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	tokens := service.NewTokenService(service.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiresIn,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenExpiresIn,
	})

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("agora-api"),
		userRepo:       userRepo,
		tokens:         tokens,
		authService:    service.NewAuthService(userRepo, tokens, cfg.BcryptCost),
		postService:    service.NewPostService(tx, userRepo, postRepo, statsRepo, commentRepo),
		commentService: service.NewCommentService(tx, userRepo, postRepo, statsRepo, commentRepo),
		likeService:    service.NewLikeService(tx, userRepo, postRepo, statsRepo, likeRepo),
		userService:    service.NewUserService(userRepo, postRepo, commentRepo),
	}, nil
}

// NewApp builds the fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Agora API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return s.respondError(c, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware installs the global middleware chain. Order matters: the
// request ID exists before anything logs and the access log sees the final status.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.allowedOrigins(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           int((24 * time.Hour).Seconds()),
	}))

	// Per-IP ceiling across every route, on top of the per-route rules.
	app.Use(limiter.New(limiter.Config{
		Max:        globalRequestsPerMinute,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "too many requests, please try again later",
				Code:  models.CodeRateLimited,
			})
		},
	}))
}

const (
	globalRequestsPerMinute = 100
	devOrigins              = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
)

func (s *Server) allowedOrigins() string {
	if s.config.AllowedOrigins == "" {
		return devOrigins
	}
	return s.config.AllowedOrigins
}

// Start builds the app and blocks serving it.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown drains in-flight requests, then closes the database and Redis.
// Close failures are logged; the first one is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	var closers []func() error
	if s.app != nil {
		closers = append(closers, func() error { return s.app.ShutdownWithContext(ctx) })
	}
	closers = append(closers, func() error {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	if s.redis != nil {
		closers = append(closers, s.redis.Close)
	}

	var first error
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			middleware.Logger.ErrorContext(ctx, "shutdown step failed", slog.String("error", err.Error()))
			if first == nil {
				first = err
			}
		}
	}
	middleware.Logger.InfoContext(ctx, "server shutdown complete")
	return first
}
