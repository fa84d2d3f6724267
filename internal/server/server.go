package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"parley-chat/config"
	"parley-chat/internal/handler"
	"parley-chat/internal/middleware"
	"parley-chat/internal/redis"
	"parley-chat/internal/services"
	"parley-chat/internal/transport/httpdto"
	"parley-chat/internal/websocket"
	"parley-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	checks     []HealthCheck
	hub        *websocket.Hub
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

// HealthCheck is one dependency probed by GET /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Chat         *handler.ChatHandler
	Message      *handler.MessageHandler
	Broadcasting *handler.BroadcastingHandler
	WebSocket    *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger, hub *websocket.Hub, checks ...HealthCheck) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.Recovery(l))

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
		checks: checks,
		hub:    hub,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})
	s.engine.GET("/health", s.health)

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.AuthMiddleware(authService), handlers.Auth.Me)
	}

	s.engine.GET("/v1/ws", handlers.WebSocket.Connect)

	v1 := s.engine.Group("/v1", middleware.AuthMiddleware(authService))
	{
		v1.GET("/users", handlers.User.List)

		v1.GET("/chats", handlers.Chat.List)
		v1.POST("/chats", handlers.Chat.Create)
		v1.POST("/chats/groups", handlers.Chat.CreateGroup)
		v1.GET("/chats/:id", handlers.Chat.Show)
		v1.GET("/chats/:id/messages", handlers.Message.List)
		v1.POST("/chats/:id/messages", middleware.MessageRateLimitMiddleware(limiter, s.logger), handlers.Message.Send)

		v1.POST("/broadcasting/auth", handlers.Broadcasting.Auth)
	}
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{}
	healthy := true
	for _, check := range s.checks {
		if err := check.Check(ctx); err != nil {
			healthy = false
			status[check.Name] = err.Error()
			continue
		}
		status[check.Name] = "ok"
	}
	if s.hub != nil {
		status["websocket_clients"] = s.hub.GetClientCount()
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, httpdto.Response[gin.H]{
			Success: false,
			Data:    status,
			Error:   "one or more dependencies are unavailable",
			Code:    "UNHEALTHY",
		})
		return
	}
	status["status"] = "healthy"
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(status))
}

// Run serves HTTP and the given background loops until ctx is cancelled, a
// SIGINT/SIGTERM arrives or any of them fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, background ...func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, run := range background {
		run := run
		g.Go(func() error { return run(gctx) })
	}

	g.Go(func() error {
		s.logger.Info("starting the server", zap.String("port", s.config.AppPort))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down the server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
