// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "prompthub/docs" // swagger docs
	"prompthub/internal/cache"
	"prompthub/internal/config"
	"prompthub/internal/database"
	"prompthub/internal/featureflags"
	"prompthub/internal/geo"
	"prompthub/internal/middleware"
	"prompthub/internal/models"
	"prompthub/internal/repository"
	"prompthub/internal/service"

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

const (
	serviceName      = "prompthub-api"
	sessionKeyHeader = "X-Session-Key"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	store           cache.Store
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	featureFlags    *featureflags.Manager
	tokens          *service.TokenService
	userService     *service.UserService
	postService     *service.PostService
	catalogService  *service.CatalogService
	trendingService *service.TrendingService
	statsService    *service.StatsService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; caches fall back to process memory without it.
	redisClient := cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}

	store := cache.NewStore(redisClient, cfg.LocalCacheSize)
	flags := featureflags.NewManager(cfg.FeatureFlags)
	tokens := service.NewTokenService(cfg.JWTSecret, store)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	postRepo := repository.NewPostRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	trendingRepo := repository.NewTrendingRepository(db)

	server := &Server{
		config:       cfg,
		db:           db,
		redis:        redisClient,
		store:        store,
		featureFlags: flags,
		tokens:       tokens,
	}

	locator := geo.NewClient(cfg.GeoIPBaseURL, cfg.GeoIPTimeout(), cfg.DefaultLocation)
	server.userService = service.NewUserService(userRepo, sessionRepo, statsRepo, tokens, locator, flags, cfg.DefaultLocation)
	server.postService = service.NewPostService(postRepo, interactionRepo, catalogRepo, store, flags, server.isAdminByUserID)
	server.catalogService = service.NewCatalogService(catalogRepo, store)
	server.trendingService = service.NewTrendingService(trendingRepo, server.postService, postRepo, store, cfg.TrendingCacheTTL())
	server.statsService = service.NewStatsService(statsRepo, postRepo, interactionRepo, store)

	return server, nil
}

// App builds the Fiber application on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "PromptHub API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler answers errors that escaped a handler, including Fiber's own
// 404 and 405 for unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.ErrCodeInternal
		switch fe.Code {
		case fiber.StatusBadRequest:
			code = models.ErrCodeValidation
		case fiber.StatusUnauthorized:
			code = models.ErrCodeUnauthorized
		case fiber.StatusForbidden:
			code = models.ErrCodeForbidden
		case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
			code = models.ErrCodeNotFound
		case fiber.StatusTooManyRequests:
			code = models.ErrCodeRateLimited
		}
		return models.RespondWithError(c, fe.Code, models.NewAppError(code, fe.Message, nil))
	}
	return respondAppError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server spans; the trace id lands in locals before the context is built
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	s.promMiddleware = middleware.InitMetrics(app, serviceName)
	app.Use(middleware.MetricsMiddleware(s.promMiddleware))

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + sessionKeyHeader,
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewAppError(models.ErrCodeRateLimited, "Too many requests, please try again later.", nil))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	auth := s.AuthRequired()

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "PromptHub Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", auth, s.Logout)
	authGroup.Get("/me", auth, s.Me)
	authGroup.Get("/check-username", s.CheckUsername)
	authGroup.Get("/profile", auth, s.GetProfile)
	authGroup.Put("/profile", auth, s.UpdateProfile)
	authGroup.Patch("/profile", auth, s.UpdateProfile)
	authGroup.Post("/change-password", auth, middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "change_password"), s.ChangePassword)
	authGroup.Post("/delete-account", auth, s.DeleteAccount)
	authGroup.Delete("/delete-account", auth, s.DeleteAccount)
	authGroup.Get("/settings", auth, s.GetSettings)
	authGroup.Put("/settings", auth, s.UpdateSettings)
	authGroup.Get("/sessions", auth, s.GetSessions)
	authGroup.Post("/sessions/revoke", auth, s.RevokeSessions)
	authGroup.Post("/avatar/regenerate", auth, s.RegenerateAvatar)

	// Post routes. Static paths are registered before /:id.
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchPosts)
	posts.Get("/sort-options", s.GetSortOptions)
	posts.Get("/filter-options", s.GetFilterOptions)
	posts.Get("/platforms", s.GetPlatforms)
	posts.Get("/models", s.GetModels)
	posts.Get("/models/suggest", s.SuggestModels)
	posts.Get("/platforms/:id/models", s.GetPlatformModels)
	posts.Get("/categories", s.GetCategories)
	posts.Get("/tags", s.GetTags)
	posts.Get("/liked", auth, s.GetLikedPosts)
	posts.Get("/bookmarked", auth, s.GetBookmarkedPosts)
	posts.Get("/my", auth, s.GetMyPosts)
	posts.Post("/", auth, middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", auth, s.LikePost)
	posts.Post("/:id/bookmark", auth, s.BookmarkPost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", auth, s.UpdatePost)
	posts.Patch("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	// Trending routes
	trending := api.Group("/trending")
	trending.Get("/category-rankings", s.GetCategoryRankings)
	trending.Post("/refresh-cache", auth, s.AdminRequired(), s.RefreshTrendingCache)
	trending.Get("/model/:name/posts", s.GetTrendingModelPosts)
	trending.Get("/model/:name/info", s.GetTrendingModelInfo)

	// Stats routes
	stats := api.Group("/stats")
	stats.Get("/dashboard", s.GetDashboardStats)
	stats.Get("/user", auth, s.GetUserStats)

	// Admin routes
	admin := api.Group("/admin")
	admin.Get("/feature-flags", auth, s.AdminRequired(), s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. A missing Redis leaves
// the API ready since caches fall back to process memory.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"service": serviceName,
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"cache":    s.store.Name(),
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, err := s.isAdmin(c, currentUserID(c))
		if err != nil {
			if repository.IsNotFound(err) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("User no longer exists"))
			}
			return respondAppError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// bearerToken reads the token from the Authorization header, falling back to
// the token query parameter.
func bearerToken(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.tokens.Verify(c.UserContext(), tokenString)
		if errors.Is(err, service.ErrTokenRevoked) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("userID", claims.UserID)
		c.Locals("claims", claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
		c.SetUserContext(ctx)

		s.userService.TouchSession(ctx, c.Get(sessionKeyHeader))
		return c.Next()
	}
}

// optionalUserID extracts the viewer from a valid token without enforcing one.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return 0
	}
	claims, err := s.tokens.Verify(c.UserContext(), tokenString)
	if err != nil {
		return 0
	}
	return claims.UserID
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
