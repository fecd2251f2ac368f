package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/auth"
	"github.com/aaronlmathis/infrascope/internal/config"
	"github.com/aaronlmathis/infrascope/internal/metrics"
	"github.com/aaronlmathis/infrascope/internal/middleware"
)

// MetricsService is the aggregation entry point the API serves.
type MetricsService interface {
	GetMetrics(ctx context.Context, req metrics.MetricRequest) ([]metrics.MetricSeriesResult, error)
}

// Server represents the API server
type Server struct {
	logger         *zap.Logger
	config         *config.Config
	router         chi.Router
	metricsService MetricsService
	authMiddleware *auth.Middleware
	oidcClient     *auth.OIDCClient
	cache          *responseCache
	limiter        *middleware.RateLimiter
}

// NewServer creates a new API server
func NewServer(logger *zap.Logger, cfg *config.Config, metricsService MetricsService) (*Server, error) {
	s := &Server{
		logger:         logger,
		config:         cfg,
		router:         chi.NewRouter(),
		metricsService: metricsService,
		cache:          newResponseCache(cfg.MetricsTTL()),
		limiter:        middleware.NewRateLimiter(cfg.RateLimits.MetricsPerMinute),
	}

	if err := s.initAuth(); err != nil {
		return nil, err
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) initAuth() error {
	authMode := auth.AuthMode(s.config.Security.AuthMode)

	if authMode == auth.AuthModeOIDC {
		oidcConfig := auth.OIDCConfig{
			Issuer:   s.config.Security.OIDC.Issuer,
			ClientID: s.config.Security.OIDC.ClientID,
			Audience: s.config.Security.OIDC.Audience,
		}

		var err error
		s.oidcClient, err = auth.NewOIDCClient(s.logger, oidcConfig)
		if err != nil {
			return err
		}

		s.logger.Info("OIDC authentication initialized")
	}

	s.authMiddleware = auth.NewMiddleware(s.logger, authMode, s.oidcClient)

	return nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.RequestIDResponseMiddleware)
	s.router.Use(middleware.PrometheusMiddleware)
	s.router.Use(s.authMiddleware.SecureHeaders)
	s.router.Use(s.corsMiddleware)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowOrigins := strings.Join(s.config.Server.CORS.AllowOrigins, ", ")
	allowMethods := strings.Join(s.config.Server.CORS.AllowMethods, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowMethods)
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	s.router.Get("/version", s.handleVersion)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)
		r.Use(chimiddleware.Timeout(60 * time.Second))

		r.With(s.limiter.Limit).Post("/metrics/nodes/{nodeType}/{nodeId}", s.handleGetNodeMetrics)
		r.Get("/metrics/nodes/{nodeType}/{nodeId}/watch", s.handleWatchNodeMetrics)
	})
}
