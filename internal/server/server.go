// Package server exposes the analysis engine and the blog service over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/notlelouch/chaincheck/internal/blog"
	"github.com/notlelouch/chaincheck/internal/metrics"
	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/rs/zerolog/log"
)

// Analyzer is the analysis engine as seen by the HTTP layer
type Analyzer interface {
	Analyze(ctx context.Context, address string) models.CompositeAnalysis
	ContractBehavior(ctx context.Context, address string) models.ContractBehavior
	LiquidityHealth(ctx context.Context, address string) models.LiquidityHealth
	HolderDistribution(ctx context.Context, address string) models.HolderDistribution
	CommunitySignals(ctx context.Context, address string) models.CommunitySignals
	Liquidity(ctx context.Context, address string) models.LiquidityInfo
}

type Config struct {
	Host            string
	Port            string
	FrontendURL     string
	RateLimitPerMin int
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration

	// TrustProxy makes the rate limiter key on X-Forwarded-For. Only set it behind a proxy
	// that overwrites the header.
	TrustProxy bool
}

type Server struct {
	router   *mux.Router
	handler  http.Handler
	server   *http.Server
	cfg      Config
	analyzer Analyzer
	blogs    blog.Repository
	metrics  *metrics.Registry
	now      func() time.Time
}

// New wires routes and middleware. metrics may be nil.
func New(cfg Config, analyzer Analyzer, blogs blog.Repository, reg *metrics.Registry) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	s := &Server{
		router:   mux.NewRouter(),
		cfg:      cfg,
		analyzer: analyzer,
		blogs:    blogs,
		metrics:  reg,
		now:      time.Now,
	}
	s.setupRoutes()
	// CORS wraps the router so preflights for any route are answered before route matching.
	s.handler = corsMiddleware(cfg.FrontendURL)(s.router)

	s.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(recoveryMiddleware)
	s.router.Use(requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/", s.root).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	limited := rateLimitMiddleware(s.cfg.RateLimitPerMin, s.cfg.TrustProxy)

	s.router.Handle("/analyze/{address}", limited(http.HandlerFunc(s.analyzeBare))).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(limited)
	api.HandleFunc("/analyze-token", s.analyzeToken).Methods(http.MethodPost)
	api.HandleFunc("/contract-behavior/{address}", s.contractBehavior).Methods(http.MethodGet)
	api.HandleFunc("/liquidity-health/{address}", s.liquidityHealth).Methods(http.MethodGet)
	api.HandleFunc("/holder-distribution/{address}", s.holderDistribution).Methods(http.MethodGet)
	api.HandleFunc("/community-signals/{address}", s.communitySignals).Methods(http.MethodGet)
	api.HandleFunc("/token-liquidity/{address}", s.tokenLiquidity).Methods(http.MethodGet)
	api.HandleFunc("/blogs", s.listBlogs).Methods(http.MethodGet)
	api.HandleFunc("/blogs", s.createBlog).Methods(http.MethodPost)

	s.router.NotFoundHandler = http.HandlerFunc(s.notFound)
}

// Handler exposes the full handler chain, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
