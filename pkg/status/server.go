// Package status exposes the relay's health over HTTP.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/tanadol/relay-go/pkg/accounts"
	"github.com/tanadol/relay-go/pkg/dedup"
	"github.com/tanadol/relay-go/pkg/pipeline"
)

// AccountReporter exposes per-credential health.
type AccountReporter interface {
	Snapshot() []accounts.Status
}

// StoreReporter exposes dedup bookkeeping counts.
type StoreReporter interface {
	Snapshot() dedup.Counts
}

// PipelineReporter exposes cycle counters.
type PipelineReporter interface {
	Snapshot() pipeline.Stats
}

type Config struct {
	Addr           string
	TargetUsername string
	PollInterval   time.Duration
	Logger         *logrus.Logger
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	return nil
}

// Server answers health probes for the relay process.
type Server struct {
	config    *Config
	accounts  AccountReporter
	store     StoreReporter
	pipe      PipelineReporter
	router    chi.Router
	server    *http.Server
	startedAt time.Time
	logger    *logrus.Logger
}

// New builds the status server.
func New(config *Config, accounts AccountReporter, store StoreReporter, pipe PipelineReporter) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Server{
		config:    config,
		accounts:  accounts,
		store:     store,
		pipe:      pipe,
		startedAt: time.Now(),
		logger:    config.Logger,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	s.router = r
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.WithField("addr", s.config.Addr).Info("Status server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("status server failed: %w", err)
	}
	return nil
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"service": "relay",
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.pipe.Snapshot()
	counts := s.store.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":         "ok",
		"uptime":         time.Since(s.startedAt).Round(time.Second).String(),
		"target":         s.config.TargetUsername,
		"poll_interval":  s.config.PollInterval.String(),
		"accounts":       s.accounts.Snapshot(),
		"pipeline":       stats,
		"dedup":          counts,
		"watermark":      counts.Watermark,
		"server_time":    time.Now().UTC().Format(time.RFC3339),
	})
}
