package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jrsteele09/storefront-api/auth"
	"github.com/jrsteele09/storefront-api/catalog"
	"github.com/jrsteele09/storefront-api/internal/config"
	"github.com/jrsteele09/storefront-api/internal/metrics"
)

type Server struct {
	env            string // Environment (e.g., "DEV", "PROD")
	mux            *http.ServeMux
	handler        http.Handler
	routes         []string
	config         config.Config
	auth           *auth.Service
	catalog        *catalog.Service
	metrics        metrics.HTTPRecorder
	metricsHandler http.Handler
	limiter        *RateLimiter
}

// Option configures optional Server collaborators
type Option func(*Server)

// WithMetrics records every routed request
func WithMetrics(recorder metrics.HTTPRecorder) Option {
	return func(s *Server) { s.metrics = recorder }
}

// WithMetricsHandler serves the scrape endpoint at RouteMetrics
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) { s.metricsHandler = handler }
}

// WithRateLimiter replaces the limiter built from config
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(s *Server) { s.limiter = limiter }
}

func New(config config.Config, authService *auth.Service, catalogService *catalog.Service, opts ...Option) (*Server, error) {
	if authService == nil {
		return nil, pkgerrors.New("[Server New] auth service is required")
	}
	if catalogService == nil {
		return nil, pkgerrors.New("[Server New] catalog service is required")
	}

	s := &Server{
		env:     config.GetEnv(),
		mux:     http.NewServeMux(),
		config:  config,
		auth:    authService,
		catalog: catalogService,
		metrics: metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.limiter == nil && config.GetEnableRateLimiting() {
		s.limiter = NewRateLimiter(RateLimiterConfig{
			Rate:            rate.Limit(float64(config.GetRateLimitPerMinute()) / 60.0),
			Burst:           config.GetRateLimitBurst(),
			CleanupInterval: 5 * time.Minute,
		})
	}

	s.initRoutes()
	s.logRoutes()

	s.handler = middleware.RequestID(
		middleware.RealIP(
			middleware.Recoverer(
				ChainMiddleware(s.mux.ServeHTTP, s.CorsMiddleware, s.SecurityHeadersMiddleware),
			),
		),
	)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close stops background work owned by the server
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, s.observe(pattern, handler))
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.RegisterRouteHandler(pattern, http.HandlerFunc(handler))
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
