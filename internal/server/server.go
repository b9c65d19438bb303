package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/titanfit/internal/dashboard"
	"github.com/claude/titanfit/internal/importer"
	"github.com/go-chi/chi/v5"
)

// Syncer archives a member's history on demand. importer.Importer implements it.
type Syncer interface {
	Import(ctx context.Context, userID string) (*importer.Stats, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	src    dashboard.HistorySource
	sync   Syncer
	health func(context.Context) error
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(src dashboard.HistorySource, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		src:    src,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetSyncer enables POST /api/v1/users/{userID}/sync.
func (s *Server) SetSyncer(sync Syncer) {
	s.sync = sync
}

// SetHealthCheck makes /healthz report the given dependency check.
func (s *Server) SetHealthCheck(fn func(context.Context) error) {
	s.health = fn
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1/users/{userID}", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Get("/daily/{date}", s.handleDaily)
		r.Get("/insights", s.handleInsights)
		r.Post("/sync", s.handleSync)
	})
}
