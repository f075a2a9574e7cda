// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"meydan/internal/caption"
	"meydan/internal/config"
	"meydan/internal/database"
	"meydan/internal/middleware"
	"meydan/internal/notifications"
	"meydan/internal/repository"
	"meydan/internal/service"
	"meydan/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	accountRepo repository.AccountRepository
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository

	media     *storage.MediaStore
	captions  *caption.Client
	publisher notifications.Publisher
	changes   notifications.ChangeFeed
	hub       *notifications.Hub
	pgFeed    postgresFeed

	feedService *service.FeedService
	postService *service.PostService
}

// postgresFeed is what the server needs from the LISTEN/NOTIFY driver.
// *notifications.PGChangeFeed satisfies it.
type postgresFeed interface {
	Ping(ctx context.Context) error
	Close()
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with a SQLite database and a miniredis-backed client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	media, err := storage.NewMediaStore(cfg.MediaRoot, cfg.MediaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("media store init failed: %w", err)
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("meydan-api"),
		accountRepo:    repository.NewAccountRepository(db),
		profileRepo:    repository.NewProfileRepository(db),
		postRepo:       repository.NewPostRepository(db),
		likeRepo:       repository.NewLikeRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		media:          media,
		captions:       caption.NewClient(cfg.CaptionProxyURL, middleware.Logger),
	}

	if err := server.setupChangeFeed(); err != nil {
		return nil, err
	}

	server.feedService = service.NewFeedService(server.profileRepo, server.postRepo, server.likeRepo)
	server.postService = service.NewPostService(server.postRepo, server.likeRepo, server.commentRepo, server.media, server.publisher)

	if server.changes != nil {
		server.hub = notifications.NewHub()
	}

	return server, nil
}

// setupChangeFeed wires the configured change-feed driver. The redis driver
// uses pub/sub; the postgres driver uses LISTEN/NOTIFY over a dedicated
// pgx pool, for deployments that run without Redis.
func (s *Server) setupChangeFeed() error {
	switch s.config.ChangeFeed {
	case "postgres":
		pgFeed, err := notifications.NewPGChangeFeed(context.Background(), s.config.DSN())
		if err != nil {
			return fmt.Errorf("postgres change feed init failed: %w", err)
		}
		s.pgFeed = pgFeed
		s.publisher = pgFeed
		s.changes = pgFeed
	default:
		if s.redis != nil {
			notifier := notifications.NewNotifier(s.redis)
			s.publisher = notifier
			s.changes = notifier
		}
	}
	return nil
}

// StartHub wires the websocket hub into the change feed. Call after
// NewServer, before serving traffic.
func (s *Server) StartHub(ctx context.Context) error {
	if s.hub == nil || s.changes == nil {
		return nil
	}
	return s.hub.StartWiring(ctx, s.changes)
}

// Shutdown releases background resources: hub wiring, connections, and the
// postgres listener pool when that driver is active.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			return err
		}
	}
	if s.pgFeed != nil {
		s.pgFeed.Close()
	}
	return nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded media is publicly readable under its URL namespace.
	app.Static("/media", s.media.Root())

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/login", s.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)
	protected.Get("/auth/me", s.Me)

	protected.Get("/feed", s.GetFeed)

	profile := protected.Group("/profile")
	profile.Get("/", s.GetMyProfile)
	profile.Put("/", s.UpdateMyProfile)

	posts := protected.Group("/posts")
	posts.Post("/", s.CreatePost)
	// Specific /:id/:resource routes BEFORE generic /:id routes
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/comments", s.AddComment)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	protected.Post("/media", s.UploadMedia)
	protected.Post("/caption", s.GenerateCaption)

	// Websocket change feed - protected (token via query param on upgrade)
	api.Get("/ws", middleware.AuthRequired, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	feedStatus := "healthy"
	switch s.config.ChangeFeed {
	case "redis":
		if s.redis == nil {
			feedStatus = "unavailable"
		} else if err := s.redis.Ping(ctx).Err(); err != nil {
			feedStatus = "unhealthy"
		}
	case "postgres":
		if s.pgFeed == nil {
			feedStatus = "unavailable"
		} else if err := s.pgFeed.Ping(ctx); err != nil {
			feedStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || feedStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database":    dbStatus,
			"change_feed": feedStatus,
		},
		"time": time.Now(),
	})
}

// generateToken creates a signed JWT for an account. The subject claim
// carries the account uuid; the email rides along so sessions can derive
// profile defaults without a second lookup.
func (s *Server) generateToken(accountID, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   accountID,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
