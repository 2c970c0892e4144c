package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ghosthack3r/wintune/internal/server/adapter"
	"github.com/ghosthack3r/wintune/internal/server/api/handlers"
	"github.com/ghosthack3r/wintune/internal/server/api/middleware"
	"github.com/ghosthack3r/wintune/internal/server/catalog"
	"github.com/ghosthack3r/wintune/internal/server/service"
	"github.com/ghosthack3r/wintune/internal/shared/config"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Server is the HTTP API server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates the API server and wires up all routes
func NewServer(
	cfg *config.ServerConfig,
	engine *service.TweakEngine,
	c *catalog.Catalog,
	r *catalog.Registry,
	history *service.HistoryService,
	sysInfo *adapter.SystemInfoManager,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(middleware.RequestSizeLimit(maxRequestBody))

	tweaks := handlers.NewTweakHandler(engine, c, r, history)
	system := handlers.NewSystemHandler(sysInfo)

	router.GET("/healthz", func(c *gin.Context) {
		Success(c, gin.H{"status": "ok"})
	})
	router.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	authed := router.Group("/api/v1")
	authed.Use(middleware.BearerAuth(cfg.APIKey))
	authed.Use(middleware.RateLimit(limiter))
	{
		authed.GET("/params", tweaks.ListParams)
		authed.GET("/profiles", tweaks.ListProfiles)
		authed.GET("/profiles/:name", tweaks.GetProfile)
		authed.GET("/history", tweaks.History)
		authed.GET("/host", system.Host)

		authed.POST("/backup", tweaks.Backup)
		authed.POST("/apply", tweaks.Apply)
		authed.POST("/restore", tweaks.Restore)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Listen,
			Handler:      router,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		},
		logger: logger,
	}
}

// Start runs the server until Stop or a listener error
func (s *Server) Start() error {
	s.logger.Info("starting api server", zap.String("listen", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping api server")
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
