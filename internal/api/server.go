package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shirou/gopsutil/v3/process"

	mw "github.com/pokeguess/pokeguess/internal/api/middleware"
	"github.com/pokeguess/pokeguess/internal/buildinfo"
	"github.com/pokeguess/pokeguess/internal/game"
	"github.com/pokeguess/pokeguess/internal/logger"
	"github.com/pokeguess/pokeguess/internal/observability"
)

// GameService is the quiz core served by the API. Implemented by *game.Service.
type GameService interface {
	GenerateRound(ctx context.Context) (game.Round, error)
	CheckGuess(ctx context.Context, req game.GuessRequest) (game.GuessResult, error)
}

// CacheStats reports the number of cached pokemon records. Implemented by *catalog.Cache.
type CacheStats interface {
	Len() int
}

// Server is the HTTP server for pokeguess.
type Server struct {
	echo   *echo.Echo
	config *Config
	log    logger.Logger

	// Dependencies
	game      GameService
	cache     CacheStats
	metrics   *observability.Metrics
	buildInfo buildinfo.BuildInfo

	staticServer *StaticFileServer
	proc         *process.Process

	startOnce sync.Once
	wg        sync.WaitGroup
	startTime time.Time
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithLogger sets the logger for the server.
func WithLogger(log logger.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

// WithMetrics sets the observability metrics for the server.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithCacheStats sets the record cache reported by /health.
func WithCacheStats(cache CacheStats) ServerOption {
	return func(s *Server) {
		s.cache = cache
	}
}

// WithBuildInfo sets the build metadata reported by /health.
func WithBuildInfo(info buildinfo.BuildInfo) ServerOption {
	return func(s *Server) {
		s.buildInfo = info
	}
}

// New creates a new HTTP server serving gameSvc.
func New(config *Config, gameSvc GameService, opts ...ServerOption) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	if gameSvc == nil {
		return nil, fmt.Errorf("game service is required")
	}

	s := &Server{
		config:    config,
		game:      gameSvc,
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.log == nil {
		s.log = GetLogger()
	}

	// Process stats are optional; /health omits memory when unavailable
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil { //nolint:gosec // pid fits int32
		s.proc = proc
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Debug = config.Debug
	s.echo.HTTPErrorHandler = s.httpErrorHandler

	s.echo.Server.ReadTimeout = config.ReadTimeout
	s.echo.Server.WriteTimeout = config.WriteTimeout
	s.echo.Server.IdleTimeout = config.IdleTimeout

	s.setupMiddleware()
	s.setupRoutes()

	s.log.Info("HTTP server initialized",
		logger.String("address", config.Address()),
		logger.String("static_dir", config.StaticDir),
		logger.Bool("metrics", s.metricsEnabled()))

	return s, nil
}

func (s *Server) metricsEnabled() bool {
	return s.config.MetricsEnabled && s.metrics != nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())

	s.echo.Use(mw.NewRequestID())

	if s.metricsEnabled() {
		s.echo.Use(mw.NewMetrics(s.metrics.HTTP))
	}

	s.echo.Use(mw.NewRequestLoggerWithSkipper(s.log, mw.SkipOperationalPaths))

	securityConfig := mw.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = s.config.AllowedOrigins

	s.echo.Use(mw.NewCORS(securityConfig))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewSecureHeaders(securityConfig))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	if s.metricsEnabled() {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	pokemon := s.echo.Group("/pokemon")
	pokemon.GET("/random", s.handleRandomRound)
	pokemon.POST("/guess", s.handleGuess)

	s.staticServer = NewStaticFileServer(s.config.StaticDir, s.log)
	s.staticServer.RegisterRoutes(s.echo)
}

// Start begins serving HTTP requests in a background goroutine and returns
// immediately. Use Shutdown to stop the server.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		s.wg.Go(func() {
			if err := s.startBlocking(); err != nil {
				s.log.Error("Server error", logger.Error(err))
			}
		})
	})
}

// startBlocking serves HTTP requests until the server is shut down.
func (s *Server) startBlocking() error {
	addr := s.config.Address()
	s.log.Info("Starting HTTP server", logger.String("address", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server within the configured shutdown timeout.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.log.Error("Error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.wg.Wait()
	s.log.Info("Server shutdown complete")
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// ServeHTTP lets the server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
