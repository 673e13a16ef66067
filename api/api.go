// Package api AI Talent Management System API
//
//	@title			AI Talent Management System API
//	@version		1.0.0
//	@description	The API service for talent management system with AI
//
// @BasePath	/
package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"talentapi/config"
	"talentapi/docs"
	"talentapi/version"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Application metadata shown in the API docs
const (
	Title       = "AI Talent Management System API"
	Description = "The API service for talent management system with AI"
)

func init() {
	docs.SwaggerInfo.Title = Title
	docs.SwaggerInfo.Description = Description
	docs.SwaggerInfo.Version = version.Version
}

// rateLimiterEntry holds a rate limiter with last seen time
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// API holds the API server
type API struct {
	router         *mux.Router
	handler        http.Handler
	server         *http.Server
	config         *config.Config
	logger         *zap.SugaredLogger
	checks         []Pinger
	rateLimiters   map[string]*rateLimiterEntry
	rateLimitersMu sync.Mutex
	stopCh         chan struct{}
	stopOnce       sync.Once
	cleanupRunning atomic.Bool
}

// Option customizes an API at construction time
type Option func(*API)

// WithReadinessChecks registers dependencies probed by GET /health/ready
func WithReadinessChecks(checks ...Pinger) Option {
	return func(a *API) {
		a.checks = append(a.checks, checks...)
	}
}

// NewAPI creates a new API server. Nothing listens until Start is called.
func NewAPI(cfg *config.Config, logger *zap.SugaredLogger, opts ...Option) *API {
	api := &API{
		router:       mux.NewRouter(),
		config:       cfg,
		logger:       logger,
		rateLimiters: make(map[string]*rateLimiterEntry),
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(api)
	}

	api.setupRoutes()
	api.server = &http.Server{
		Handler:           api.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return api
}

// setupRoutes registers the routes and wraps the router in the middleware
// chain. The chain sits outside the router so unmatched requests are traced
// and counted too.
func (a *API) setupRoutes() {
	a.router.HandleFunc("/", a.index).Methods("GET")
	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.HandleFunc("/health/ready", a.readinessCheck).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler())

	// API docs
	a.router.Handle("/docs", http.RedirectHandler("/docs/index.html", http.StatusMovedPermanently))
	a.router.PathPrefix("/docs/").Handler(httpSwagger.WrapHandler)
	a.router.HandleFunc("/redoc", a.redoc).Methods("GET")

	var h http.Handler = a.router
	if a.rateLimitEnabled() {
		h = a.rateLimitMiddleware(h)
	}
	h = a.metricsMiddleware(h)
	h = a.recoveryMiddleware(h)
	a.handler = a.requestIDMiddleware(h)
}

// Handler returns the root HTTP handler
func (a *API) Handler() http.Handler {
	return a.handler
}

// Start serves HTTP on l until Stop is called. It returns http.ErrServerClosed
// after a graceful stop.
func (a *API) Start(l net.Listener) error {
	if a.rateLimitEnabled() {
		go a.cleanupRateLimiters()
	}
	return a.server.Serve(l)
}

// Stop stops accepting new connections and waits for in-flight requests
// until ctx expires.
func (a *API) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.stopCh) })
	return a.server.Shutdown(ctx)
}
