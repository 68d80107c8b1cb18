// Package server exposes simulation, verification and display over HTTP.
package server

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comalice/metrosim/internal/config"
	"github.com/comalice/metrosim/internal/production"
)

const (
	// DefaultRunTimeout bounds a simulation started over HTTP.
	DefaultRunTimeout = 30 * time.Second
	// maxDwell caps the per-request dwell so one request cannot hold a
	// worker for long.
	maxDwell = time.Second
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg        *config.Config
	store      production.TraceStore
	logger     *log.Logger
	runTimeout time.Duration
	limits     Limits
}

// Option configures a Server.
type Option func(*Server)

// WithStore keeps every simulated trace in store so it can be fetched
// again by ID.
func WithStore(store production.TraceStore) Option {
	return func(s *Server) { s.store = store }
}

// WithLogger sets the request and diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunTimeout bounds each simulation run.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

// WithLimits replaces DefaultLimits.
func WithLimits(l Limits) Option {
	return func(s *Server) { s.limits = l }
}

// New creates a Server. cfg supplies the default dwell and seed.
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:        cfg,
		logger:     log.New(os.Stderr, "metrosim: ", log.LstdFlags),
		runTimeout: DefaultRunTimeout,
		limits:     DefaultLimits,
	}
	if cfg.Timeout > 0 {
		s.runTimeout = cfg.Timeout
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(s.logger), gin.Recovery(), BodyLimit(s.limits.MaxBodyBytes))

	if err := r.SetTrustedProxies(nil); err != nil {
		s.logger.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/verify", s.verifyLog)
		api.POST("/display", s.displayLog)

		sims := api.Group("/simulations")
		sims.POST("", s.simulate)
		sims.GET("/:id", s.getTrace)
		sims.GET("/:id/report.pdf", s.getReportPDF)
		sims.GET("/:id/dot", s.getDOT)
	}
	return r
}

// ListenAndServe serves the router on addr until the server fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Printf("[HTTP] listening on %s", addr)
	return srv.ListenAndServe()
}
