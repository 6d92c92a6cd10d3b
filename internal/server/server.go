// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"fmt"
	"time"

	"librarium/internal/auth"
	"librarium/internal/cache"
	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/extension"
	"librarium/internal/middleware"
	"librarium/internal/precompute"
	"librarium/internal/repository"
	"librarium/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config   *config.Config
	db       *gorm.DB
	redis    *redis.Client
	engine   *precompute.Engine
	registry *extension.Registry

	contentService *service.ContentService
	likeService    *service.LikeService
	tagService     *service.TagService
	reportService  *service.ReportService
	userService    *service.UserService
	statsService   *service.StatsService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	registry, err := extension.BuildRegistry(cfg.Projects)
	if err != nil {
		return nil, fmt.Errorf("invalid project configuration: %w", err)
	}

	return NewServerWithDB(cfg, db, registry), nil
}

// NewServerWithDB wires a server onto an existing database handle and
// registry. Tests use this with an in-memory sqlite database.
func NewServerWithDB(cfg *config.Config, db *gorm.DB, registry *extension.Registry) *Server {
	engine := precompute.NewEngine(db, middleware.Logger)

	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	tagRepo := repository.NewTagRepository(db)
	reportRepo := repository.NewReportRepository(db)

	toolkit := service.NewToolkit(contentRepo, tagRepo, likeRepo, reportRepo, userRepo, engine)
	verifier := auth.NewJWTVerifier(cfg.AuthSecret)

	s := &Server{
		config:   cfg,
		db:       db,
		redis:    cache.GetClient(),
		engine:   engine,
		registry: registry,

		contentService: service.NewContentService(contentRepo, tagRepo, userRepo, registry, engine, toolkit, middleware.Logger),
		likeService:    service.NewLikeService(likeRepo, contentRepo, engine),
		tagService:     service.NewTagService(tagRepo, contentRepo, userRepo, engine),
		reportService:  service.NewReportService(reportRepo, contentRepo, registry, engine, toolkit),
		userService:    service.NewUserService(userRepo, contentRepo, likeRepo, engine, verifier, middleware.Logger),
		statsService:   service.NewStatsService(db, contentRepo),
	}

	middleware.InitAuth(s.userService.ResolveToken)
	return s
}

// Engine exposes the precomputation engine for the background sweeper.
func (s *Server) Engine() *precompute.Engine {
	return s.engine
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())
	middleware.InitMetrics(app)

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.HealthCheck)

	v1 := app.Group("/v1")
	v2 := app.Group("/v2")

	v1.Post("/auth", middleware.RateLimit(s.redis, 10, time.Minute, "login"), s.Login)
	v1.Get("/auth", middleware.OptionalAuth, s.IsAuth)

	v1.Post("/content/:project", middleware.AuthRequired, s.AddContent)
	v1.Get("/content/:contentid", middleware.OptionalAuth, s.GetContent)
	v1.Put("/content/:contentid", middleware.AuthRequired, s.UpdateContent)
	v1.Delete("/content/:contentid", middleware.AuthRequired, s.DeleteContent)
	v2.Get("/content/:project", middleware.OptionalAuth, s.ListContent)

	v1.Post("/like/:contentid", middleware.AuthRequired, s.Like)
	v1.Delete("/like/:contentid", middleware.AuthRequired, s.Unlike)

	v1.Get("/tag/:contentid", s.ListTags)
	v1.Post("/tag/:contentid/:tag", middleware.AuthRequired, s.AddTag)
	v1.Delete("/tag/:contentid/:tag", middleware.AuthRequired, s.RemoveTag)
	v2.Get("/tag/:project", s.TagCounts)

	v1.Post("/report/:contentid", middleware.AuthRequired, s.Report)
	v1.Delete("/report/:contentid", middleware.AuthRequired, s.Unreport)

	v1.Get("/user/:project", s.ListUsers)
	v2.Get("/user/:project/:userid", s.GetUser)
	v1.Put("/user/:userid", middleware.AuthRequired, s.SetUser)
	v1.Get("/bans", middleware.AuthRequired, s.ListBans)

	v1.Get("/tools/post-process/:project", middleware.AuthRequired, s.PostProcessProject)
	v1.Get("/tools/post-process/:project/:contentid", middleware.AuthRequired, s.PostProcessContent)
	v1.Get("/stats", s.InstanceStats)
}

// HealthCheck handles GET /
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Librarium is running",
		"version": "1.0.0",
	})
}

// Shutdown releases the server's external resources.
func (s *Server) Shutdown(ctx context.Context) error {
	cache.Close()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
