// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log"
	"time"

	_ "mdd/docs" // swagger docs
	"mdd/internal/auth"
	"mdd/internal/bootstrap"
	"mdd/internal/config"
	"mdd/internal/featureflags"
	"mdd/internal/middleware"
	"mdd/internal/models"
	"mdd/internal/notifications"
	"mdd/internal/repository"
	"mdd/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	themeRepo   repository.ThemeRepository
	articleRepo repository.ArticleRepository
	commentRepo repository.CommentRepository
	subRepo     repository.SubscriptionRepository

	tokens       *auth.TokenService
	hasher       *auth.Hasher
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	authService         *service.AuthService
	userService         *service.UserService
	themeService        *service.ThemeService
	articleService      *service.ArticleService
	commentService      *service.CommentService
	subscriptionService *service.SubscriptionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Redis may be nil when unreachable; caching and realtime degrade.
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedThemes: cfg.SeedThemes})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("mdd-api"),
		userRepo:       repository.NewUserRepository(db),
		themeRepo:      repository.NewThemeRepository(db),
		articleRepo:    repository.NewArticleRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		subRepo:        repository.NewSubscriptionRepository(db),
		tokens:         auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration),
		hasher:         auth.NewHasher(cfg.BcryptCost),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	// Realtime delivery needs Redis pub/sub.
	var publisher service.ArticlePublisher
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub(server.subRepo)
		publisher = server.notifier
	}

	server.authService = service.NewAuthService(server.userRepo, server.hasher, server.tokens, server.featureFlags)
	server.userService = service.NewUserService(server.userRepo, server.hasher, server.featureFlags)
	server.themeService = service.NewThemeService(server.themeRepo, server.subRepo)
	server.articleService = service.NewArticleService(server.articleRepo, server.themeRepo, server.userRepo, publisher)
	server.commentService = service.NewCommentService(server.commentRepo, server.articleRepo, server.userRepo)
	server.subscriptionService = service.NewSubscriptionService(server.subRepo, server.userRepo, server.themeRepo, server.articleRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:4200,http://localhost:5173,http://127.0.0.1:4200"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Bearer tokens bind a principal; invalid or missing ones leave the request anonymous.
	if s.tokens != nil && s.userRepo != nil {
		app.Use(middleware.Authenticate(s.tokens, s.userRepo))
	}

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later"))
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
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "MDD Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	requireAuth := middleware.RequireAuth()

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authRoutes.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)

	// Theme routes; specific paths before /:id
	themes := api.Group("/themes")
	themes.Get("/", s.GetThemes)
	themes.Get("/subscriptions", requireAuth, s.GetSubscriptions)
	themes.Get("/:id", s.GetTheme)
	themes.Post("/", requireAuth, s.CreateTheme)
	themes.Put("/:id", requireAuth, s.UpdateTheme)
	themes.Delete("/:id", requireAuth, s.DeleteTheme)
	themes.Post("/:id/subscribe", requireAuth, s.Subscribe)
	themes.Post("/:id/unsubscribe", requireAuth, s.Unsubscribe)

	// Article routes
	articles := api.Group("/articles")
	articles.Get("/", s.GetArticles)
	articles.Get("/feed", requireAuth, s.GetFeed)
	articles.Get("/search", s.SearchArticles)
	articles.Get("/theme/:id", s.GetThemeArticles)
	articles.Get("/user/:id", s.GetUserArticles)
	articles.Get("/:id", s.GetArticle)
	articles.Post("/", requireAuth, middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_article"), s.CreateArticle)
	articles.Put("/:id", requireAuth, s.UpdateArticle)
	articles.Delete("/:id", requireAuth, s.DeleteArticle)

	// Comment routes
	comments := api.Group("/comments")
	comments.Get("/", s.GetComments)
	comments.Get("/article/:id", s.GetArticleComments)
	comments.Get("/user/:id", s.GetUserComments)
	comments.Get("/:id", s.GetComment)
	comments.Post("/", requireAuth, middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	comments.Put("/:id", requireAuth, s.UpdateComment)
	comments.Delete("/:id", requireAuth, s.DeleteComment)

	// User routes
	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Get("/me", requireAuth, s.GetMyProfile)
	users.Get("/username/:username", s.GetUserByUsername)
	users.Get("/check/username/:username", s.CheckUsername)
	users.Get("/check/email/:email", s.CheckEmail)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", requireAuth, s.UpdateUser)
	users.Delete("/:id", requireAuth, s.DeleteUser)

	api.Get("/features", requireAuth, s.GetFeatureFlags)

	// Realtime feed: a bearer-authenticated ticket request, then the upgrade
	// presents the single-use ticket.
	api.Post("/ws/ticket", requireAuth, s.IssueWSTicket)
	api.Get("/ws/feed", s.WSTicketRequired(), s.FeedSocketHandler())
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
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// newApp builds the fiber app with the shared error handler.
func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "MDD API",
		ErrorHandler: respondErr,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.newApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Stops the pub/sub wiring goroutine.
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Printf("error closing sql DB: %v", cerr)
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
