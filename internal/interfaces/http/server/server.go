package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kegledger/backend/internal/infrastructure/config"
	"github.com/kegledger/backend/internal/infrastructure/logger"
	"github.com/kegledger/backend/internal/interfaces/http/middleware"
	"github.com/kegledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// EngineOption customises NewEngine
type EngineOption func(*engineOptions)

type engineOptions struct {
	tracing middleware.TracingConfig
}

// WithTracing opens a server span per request
func WithTracing(cfg middleware.TracingConfig) EngineOption {
	return func(o *engineOptions) {
		o.tracing = cfg
	}
}

// NewEngine builds the gin engine with the middleware chain and every API
// route mounted under /api/v1
func NewEngine(cfg config.HTTPConfig, log *zap.Logger, handlers router.Handlers, opts ...EngineOption) (*gin.Engine, error) {
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, fmt.Errorf("setup validator: %w", err)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	// spans start before the request logger so its entries carry trace_id
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(o.tracing)...)
	engine.Use(
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg)),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	router.NewRouter(engine).Register(router.Groups(handlers)...).Setup()
	return engine, nil
}

// Server wraps the HTTP server lifecycle
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// New creates a server listening on :port
func New(port string, cfg config.HTTPConfig, handler http.Handler, log *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:           ":" + port,
			Handler:        handler,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			IdleTimeout:    cfg.IdleTimeout,
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
		logger: log,
	}
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.http.Shutdown(ctx)
}
