// Package server contains the HTTP handlers for the thesis repository API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"thesisrepo/internal/bootstrap"
	"thesisrepo/internal/cache"
	"thesisrepo/internal/config"
	"thesisrepo/internal/middleware"
	"thesisrepo/internal/models"
	"thesisrepo/internal/notifications"
	"thesisrepo/internal/repository"
	"thesisrepo/internal/service"
	_ "thesisrepo/docs" // swagger docs

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	notifier       *notifications.Notifier

	userRepo     repository.UserRepository
	lookupRepo   repository.LookupRepository
	thesisRepo   repository.ThesisRepository
	commentRepo  repository.CommentRepository
	citationRepo repository.CitationRepository
	viewRepo     repository.ViewRepository
	favoriteRepo repository.FavoriteRepository

	authService      *service.AuthService
	userService      *service.UserService
	lookupService    *service.LookupService
	thesisService    *service.ThesisService
	commentService   *service.CommentService
	citationService  *service.CitationService
	analyticsService *service.AnalyticsService
	favoriteService  *service.FavoriteService
}

// NewServer initializes the runtime (database, Redis, built-in lookups and
// the development root admin) and builds a server on it.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedLookups: !cfg.IsProduction()})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis. A nil
// Redis client disables token revocation, rate limiting and events.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("server requires a database")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("thesisrepo-api"),
		notifier:       notifications.NewNotifier(redisClient),
		userRepo:       repository.NewUserRepository(db),
		lookupRepo:     repository.NewLookupRepository(db),
		thesisRepo:     repository.NewThesisRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		citationRepo:   repository.NewCitationRepository(db),
		viewRepo:       repository.NewViewRepository(db),
		favoriteRepo:   repository.NewFavoriteRepository(db),
	}

	ttl := time.Duration(cfg.JWTTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s.authService = service.NewAuthService(s.userRepo, cfg.JWTSecret, ttl, cfg.EmailDomain)
	s.userService = service.NewUserService(s.userRepo)
	s.lookupService = service.NewLookupService(s.lookupRepo)
	s.thesisService = service.NewThesisService(s.thesisRepo, s.userRepo, s.lookupRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.thesisRepo, s.userRepo, s.notifier)
	s.citationService = service.NewCitationService(s.citationRepo, s.thesisRepo, s.userRepo, s.notifier)
	s.analyticsService = service.NewAnalyticsService(s.thesisRepo, s.citationRepo, s.viewRepo)
	s.favoriteService = service.NewFavoriteService(s.favoriteRepo, s.thesisRepo)

	return s, nil
}

// NewApp builds the fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Thesis Repository API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so throttled responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
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
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)

	// Lookups
	api.Get("/faculties", s.GetFaculties)
	api.Get("/departments", s.GetDepartments)
	api.Get("/advisors", s.GetAdvisors)
	api.Get("/advisor/:advisorId/stats", s.GetAdvisorStats)

	// Theses. Specific /:id/:resource routes before the generic /:id route.
	theses := api.Group("/theses")
	theses.Get("/", s.GetTheses)
	theses.Post("/", s.AuthRequired(), s.CreateThesis)
	theses.Get("/:id/comments", s.GetComments)
	theses.Post("/:id/comments", s.AuthRequired(),
		middleware.RateLimit(s.redis, s.perMinute(s.config.CommentsPerMinute, 5), time.Minute, "submit_comment"),
		s.CreateComment)
	theses.Get("/:id/citations", s.GetCitations)
	theses.Post("/:id/citations", s.AuthRequired(), s.CreateCitation)
	theses.Post("/:id/cite", s.AuthRequired(), s.CiteThesis)
	theses.Post("/:id/download", s.DownloadThesis)
	theses.Post("/:id/view",
		middleware.RateLimit(s.redis, s.perMinute(s.config.ViewsPerMinute, 30), time.Minute, "record_view"),
		s.RecordView)
	analytics := theses.Group("/:id/analytics")
	analytics.Get("/citations/impact", s.GetImpact)
	analytics.Get("/citations/by-year", s.GetCitationsByYear)
	analytics.Get("/citations/by-type", s.GetCitationsByType)
	analytics.Get("/views/daily", s.GetDailyViews)
	analytics.Get("/views/monthly", s.GetMonthlyViews)
	theses.Get("/:id", s.GetThesis)
	theses.Put("/:id", s.AuthRequired(), s.UpdateThesis)
	theses.Delete("/:id", s.AuthRequired(), s.AdminRequired(), s.DeleteThesis)

	api.Delete("/comments/:id", s.AuthRequired(), s.DeleteComment)
	api.Put("/citations/:id", s.AuthRequired(), s.UpdateCitation)
	api.Delete("/citations/:id", s.AuthRequired(), s.DeleteCitation)

	favorites := api.Group("/favorites", s.AuthRequired())
	favorites.Get("/", s.GetFavorites)
	favorites.Post("/", s.AddFavorite)
	favorites.Get("/:thesisId/check", s.CheckFavorite)
	favorites.Delete("/:thesisId", s.RemoveFavorite)

	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	api.Get("/ws/notifications", s.wsTicketAuth(), s.NotificationsSocket())

	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Post("/faculties", s.CreateFaculty)
	admin.Put("/faculties/:id", s.UpdateFaculty)
	admin.Post("/departments", s.CreateDepartment)
	admin.Put("/departments/:id", s.UpdateDepartment)
	admin.Get("/users", s.GetAllUsers)
	admin.Put("/users/:id", s.UpdateUser)
	admin.Delete("/users/:id", s.DeleteUser)
	admin.Get("/comments/pending", s.GetPendingComments)
	admin.Put("/comments/:id/moderation", s.ModerateComment)
}

func (s *Server) perMinute(configured, fallback int) int {
	if configured > 0 {
		return configured
	}
	return fallback
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

// AuthRequired returns the authentication middleware. It stores the caller
// in c.Locals("userID") and the verified claims in c.Locals("claims").
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := middleware.BearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}
		if cache.IsBlacklisted(c.UserContext(), s.redis, claims.ID) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		c.Locals("userID", claims.UserID)
		c.Locals("claims", claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.userService.IsAdmin(c.UserContext(), userID)
		if err != nil {
			return respondWithAppError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// optionalUserID returns the caller when a valid, unrevoked bearer token is
// present and Anonymous (0) otherwise.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	tokenString := middleware.BearerToken(c)
	if tokenString == "" {
		return 0
	}
	claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
	if err != nil || cache.IsBlacklisted(c.UserContext(), s.redis, claims.ID) {
		return 0
	}
	return claims.UserID
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
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
