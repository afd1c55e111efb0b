// Package server exposes the coordinator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"socialmesh/internal/bootstrap"
	"socialmesh/internal/config"
	"socialmesh/internal/middleware"
	"socialmesh/internal/models"
	"socialmesh/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// shutdownTimeout bounds Shutdown plus cleanup once Run is told to stop.
const shutdownTimeout = 10 * time.Second

// Coordinator is the set of operations the HTTP layer calls.
type Coordinator interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (*service.CreateUserResult, error)
	CreatePost(ctx context.Context, in service.CreatePostInput) (*service.CreatePostResult, error)
	LikePost(ctx context.Context, postID string) (*service.LikePostResult, error)
	ReadPost(ctx context.Context, postID string) (*service.PostView, error)
	ReadTrending(ctx context.Context) ([]models.TrendingEntry, error)
	ReadUserPosts(ctx context.Context, userID string) (*service.UserPosts, error)
	PostEvents(ctx context.Context, postID string, limit int) ([]models.PostEvent, error)
	Health(ctx context.Context) (bool, []service.StoreHealth)
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	runtime        *bootstrap.Runtime
	coordinator    Coordinator
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
}

// NewServer connects every store and builds a server around the resulting
// coordinator.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := NewServerWithDeps(cfg, rt.Coordinator)
	s.runtime = rt
	return s, nil
}

// NewServerWithDeps creates a Server around an already-built coordinator.
func NewServerWithDeps(cfg *config.Config, coordinator Coordinator) *Server {
	name := "socialmesh"
	if cfg != nil && cfg.AppName != "" {
		name = cfg.AppName
	}
	return &Server{
		config:         cfg,
		coordinator:    coordinator,
		promMiddleware: middleware.InitMetrics(name),
	}
}

// App builds the fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "socialmesh",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, err)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
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
	app.Use(middleware.TracingMiddleware())

	// Propagates request and trace ids into the logger context.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	limit := 600
	if s.config != nil && s.config.RateLimitPerMinute > 0 {
		limit = s.config.RateLimitPerMinute
	}
	app.Use(limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
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
	app.Get("/health", s.HealthCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Post("/create_user", s.CreateUser)
	app.Post("/create_post", s.CreatePost)
	app.Post("/like_post", s.LikePost)

	// Specific /:post_id/events before the generic /:post_id route
	app.Get("/post/:post_id/events", s.GetPostEvents)
	app.Get("/post/:post_id", s.GetPost)

	app.Get("/top_trending", s.TopTrending)
	app.Get("/user_posts/:user_id", s.GetUserPosts)
}

// HealthCheck reports process liveness only.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck pings every store and returns 503 when any is unreachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	healthy, stores := s.coordinator.Health(ctx)

	status := fiber.StatusOK
	overall := "ready"
	if !healthy {
		status = fiber.StatusServiceUnavailable
		overall = "unavailable"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"stores": stores,
		"time":   time.Now().UTC(),
	})
}

// Run serves on ln until ctx is cancelled. It then shuts the server down,
// runs cleanup in order and returns only once all of that has finished.
func (s *Server) Run(ctx context.Context, ln net.Listener, cleanup ...func(context.Context) error) error {
	s.app = s.App()
	middleware.Logger.Info("Server starting", "addr", ln.Addr().String())

	served := make(chan error, 1)
	go func() { served <- s.app.Listener(ln) }()

	stopped := false
	select {
	case err := <-served:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		stopped = true
	case <-ctx.Done():
	}

	middleware.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.Shutdown(shutdownCtx)
	_ = ln.Close()
	if !stopped {
		select {
		case <-served:
		case <-shutdownCtx.Done():
		}
	}

	for _, fn := range cleanup {
		if cerr := fn(shutdownCtx); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

// Shutdown stops accepting requests and closes every store client.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.runtime != nil {
		if err := s.runtime.Close(ctx); err != nil {
			middleware.Logger.Error("error closing store clients", "error", err)
			return err
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
