// Package server contains the HTTP and WebSocket handlers for the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"focusgram/internal/app"
	"focusgram/internal/auth"
	"focusgram/internal/backend"
	"focusgram/internal/cache"
	"focusgram/internal/config"
	"focusgram/internal/database"
	"focusgram/internal/media"
	"focusgram/internal/middleware"
	"focusgram/internal/models"
	"focusgram/internal/notifications"
	"focusgram/internal/session"
	"focusgram/internal/store"

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

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	http           *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	records  *store.Store
	session  *session.Holder
	backend  backend.Backend
	state    *app.App
	media    media.Storage
	notifier *notifications.Notifier
	hub      *notifications.Hub
}

// NewServer creates a server instance, establishing its own database and
// redis connections from config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.NewClient(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server over already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	records := store.New()
	b := backend.NewGormBackend(db)
	authn := auth.NewGormAuthenticator(db, cfg.JWTSecret)
	marker := cache.NewSessionMarkerStore(redisClient)
	holder := session.NewHolder(records, b, authn, marker)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("focusgram-api"),
		records:        records,
		session:        holder,
		backend:        b,
		media:          media.NewLocalStorage(cfg.MediaDir, cfg.MediaBaseURL),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
	}
	server.state = app.New(records, holder, b, server.notifier)

	return server, nil
}

// State exposes the application state object, mainly for tests.
func (s *Server) State() *app.App {
	return s.state
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(f *fiber.App) {
	f.Use(recover.New())
	f.Use(requestid.New())
	f.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		f.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	f.Use(helmet.New())
	f.Use(middleware.StructuredLogger())
	if s.config.TracingEnabled {
		f.Use(middleware.TracingMiddleware())
	}

	// CORS before middlewares that can short-circuit, so browser clients
	// still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	f.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	f.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		// Preflight requests are handled by CORS, never throttled.
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(f *fiber.App) {
	api := f.Group("/api")

	f.Get("/health/live", s.LivenessCheck)
	f.Get("/health/ready", s.ReadinessCheck)
	f.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(f, "/metrics")
	}

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	authGroup.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", s.Logout)
	authGroup.Get("/session", s.GetSession)

	// The feed and profiles render for signed-out viewers too; the
	// viewer-relative flags simply come out false.
	api.Get("/feed", s.GetFeed)
	api.Get("/posts/:id", s.GetPost)
	api.Get("/users/:username", s.GetProfile)

	protected := api.Group("", middleware.SessionRequired(s.session))
	protected.Post("/posts", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	protected.Post("/posts/:id/comments", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	protected.Post("/posts/:id/like", s.ToggleLike)
	protected.Post("/posts/:id/save", s.ToggleSave)
	protected.Post("/users/:id/follow", s.ToggleFollow)
	protected.Post("/media", s.UploadMedia)

	api.Get("/ws", middleware.WebSocketSessionRequired(s.session), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
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
		// The app degrades without redis, so absence does not fail readiness.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// Start loads records, restores the session, and serves until shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	if err := s.state.Init(ctx); err != nil {
		cancel()
		return fmt.Errorf("startup load failed: %w", err)
	}
	go s.session.Watch(ctx)

	f := fiber.New(fiber.Config{
		AppName:   "Focusgram API",
		BodyLimit: 32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("unhandled request error", "error", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.http = f

	s.SetupMiddleware(f)
	s.SetupRoutes(f)

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				slog.Error("hub wiring failed", "error", err)
			}
		}()
	}

	slog.Info("server starting", "port", s.config.Port)
	return f.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server, waiting for in-flight backend
// writes to settle so no confirmed-locally mutation is lost.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.http != nil {
		if err := s.http.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", "error", err)
		}
	}

	s.state.WaitForWrites()

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", "error", cerr)
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", "error", rerr)
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
