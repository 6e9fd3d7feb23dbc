package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/MarkShawn2020/lovcode/backend/internal/api/http"
	"github.com/MarkShawn2020/lovcode/backend/internal/api/middleware"
	"github.com/MarkShawn2020/lovcode/backend/internal/api/ws"
	"github.com/MarkShawn2020/lovcode/backend/internal/infrastructure/config"
	"github.com/MarkShawn2020/lovcode/backend/internal/infrastructure/logging"
	"github.com/MarkShawn2020/lovcode/backend/internal/infrastructure/monitoring"
	"github.com/MarkShawn2020/lovcode/backend/internal/providers/terminal"
	"github.com/MarkShawn2020/lovcode/backend/internal/service"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	sessions *terminal.Registry
	registry *service.Registry
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing lovcode backend",
		zap.String("port", cfg.Server.Port),
		zap.String("fallback_shell", cfg.Terminal.Shell),
	)

	metrics := monitoring.NewMetrics()

	// Terminal session registry: the core of the service
	sessions := terminal.NewRegistry().
		WithLogger(logger).
		WithMetrics(metrics).
		WithFallbackShell(cfg.Terminal.Shell)

	// Service registry with the terminal provider on the tool surface
	serviceRegistry := service.NewRegistry()
	if err := serviceRegistry.Register(terminal.NewProvider(sessions)); err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(sessions, serviceRegistry)
	wsHandler := ws.NewHandler(sessions, logger, metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Service management
	router.GET("/services", handlers.ListServices)
	router.POST("/services/execute", handlers.ExecuteService)

	// Terminal sessions
	router.POST("/terminal/sessions", handlers.CreateSession)
	router.GET("/terminal/sessions", handlers.ListSessions)
	router.GET("/terminal/sessions/:id", handlers.GetSession)
	router.DELETE("/terminal/sessions/:id", handlers.KillSession)
	router.POST("/terminal/sessions/:id/input", handlers.WriteSession)
	router.GET("/terminal/sessions/:id/output", handlers.ReadSession)
	router.POST("/terminal/sessions/:id/resize", handlers.ResizeSession)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		sessions: sessions,
		registry: serviceRegistry,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server, killing every live session
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.sessions.Shutdown()
	s.logger.Info("All terminal sessions terminated")

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
