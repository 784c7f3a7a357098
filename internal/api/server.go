// Package api is the HTTP surface: the /wiki/{title} article endpoint and
// a transparent passthrough to the upstream wiki for everything else, so
// links, styles, and assets on served pages keep working.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wikimirror/wikimirror/internal/config"
	"github.com/wikimirror/wikimirror/internal/pipeline"
	"github.com/wikimirror/wikimirror/internal/wiki"
)

// Server is the HTTP server for the mirror.
type Server struct {
	router      chi.Router
	coordinator *pipeline.Coordinator
	wiki        *wiki.Client
	proxyClient *http.Client
	log         *slog.Logger
	cfg         config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(coord *pipeline.Coordinator, wikiClient *wiki.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		coordinator: coord,
		wiki:        wikiClient,
		proxyClient: &http.Client{},
		log:         log,
		cfg:         cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/wiki/{title}", s.handleArticle)

	// Everything else passes through to the upstream wiki.
	r.NotFound(s.handleProxy)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
