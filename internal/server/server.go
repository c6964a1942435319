package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meditime/meditime-ai/internal/config"
	"github.com/meditime/meditime-ai/internal/ingest"
)

// Server owns the HTTP listener and router.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	log        *zap.Logger
}

// New builds the router for proc. Metrics are registered on a private
// registry when cfg.Metrics.Enabled is set.
func New(cfg *config.Config, log *zap.Logger, proc *ingest.Processor) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true

	var metrics *Metrics
	if cfg.Metrics.Enabled {
		metrics = NewMetrics()
	}

	router.Use(recovery(log), requestID(), requestLogger(log))
	if metrics != nil {
		router.Use(metrics.middleware())
	}
	router.Use(corsMiddleware(cfg.CORS))

	h := NewHandler(proc, cfg.Server.MaxUploadBytes, metrics, log)

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.POST("/predict-image", h.PredictImage)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Status: StatusError, Detail: "not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Status: StatusError, Detail: "method not allowed"})
	})

	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Server.Addr(),
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		router: router,
		log:    log,
	}

	log.Info("Server created",
		zap.String("address", cfg.Server.Addr()),
		zap.Strings("stages", proc.StageNames()),
		zap.Bool("metrics", metrics != nil))

	return server
}

// Handler returns the router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until Shutdown is called.
// It returns nil after a graceful shutdown.
func (s *Server) Run() error {
	s.log.Info("Server is running", zap.String("address", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
