// Package server hosts visuals over HTTP.
//
// Each visual lives in a session addressed by a UUID. A browser loads the
// interactive SVG, forwards the "linevis" DOM events the embedded script
// emits to the events endpoint and re-fetches the chart, so the Go side
// stays the single owner of layout, geometry and selection. Selections are
// persisted to the cache under the session id and survive restarts when the
// cache is redis.
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/linevis/pkg/cache"
	"github.com/matzehuels/linevis/pkg/settings"
)

// Config holds server configuration.
type Config struct {
	Addr       string
	AllowAll   bool   // allow all CORS origins (dev mode)
	DataDir    string // datasets loadable with PUT /data?file=
	Namespace  string // prefix for cache keys when servers share a redis
	Settings   *settings.Settings
	DataLabels bool
	// SessionTTL is how long an idle session is kept in memory. Zero keeps
	// sessions until they are deleted.
	SessionTTL time.Duration
}

// Server routes HTTP requests to visual sessions.
type Server struct {
	cfg    Config
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
	router chi.Router

	mu       sync.Mutex
	sessions map[string]*session

	httpServer *http.Server
}

// New creates a server. A nil cache disables selection persistence; a nil
// logger discards output.
func New(cfg Config, c cache.Cache, logger *log.Logger) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Settings == nil {
		cfg.Settings = settings.Default()
	}
	s := &Server{
		cfg:      cfg,
		cache:    c,
		keyer:    cache.NewDefaultKeyer(),
		logger:   logger,
		sessions: make(map[string]*session),
	}
	if cfg.Namespace != "" {
		s.keyer = cache.NewScopedKeyer(s.keyer, cfg.Namespace+":")
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/visuals", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDelete)
			r.Group(func(r chi.Router) {
				r.Use(s.withSession)
				r.Put("/data", s.handleUpdate)
				r.Post("/events", s.handleEvents)
				r.Get("/chart.svg", s.handleChart)
				r.Get("/selection", s.handleSelection)
				r.Get("/tooltip", s.handleTooltip)
				r.Get("/layout", s.handleLayout)
			})
		})
	})
	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("listening", "addr", s.cfg.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the listener and persists every open session.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.close(ctx, s.logger)
		delete(s.sessions, id)
	}
	return err
}

// Evict drops sessions idle for longer than the configured TTL and reports
// how many were removed.
func (s *Server) Evict(ctx context.Context, now time.Time) int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed()) > s.cfg.SessionTTL {
			sess.close(ctx, s.logger)
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Debug("evicted sessions", "count", n)
	}
	return n
}
