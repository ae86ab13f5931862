package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/selection"
	"github.com/matzehuels/linevis/pkg/visual"
)

// session serializes access to one visual.
type session struct {
	id string

	mu       sync.Mutex
	v        *visual.Visual
	table    chart.Table
	viewport geometry.Size
	loaded   bool
	used     time.Time
}

func (s *session) touch() { s.used = time.Now() }

func (s *session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}

// close persists the selection and detaches the visual.
func (s *session) close(ctx context.Context, logger *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.v.Persist(ctx); err != nil {
		logger.Warn("persist selection", "session", s.id, "error", err)
	}
	s.v.Close()
}

// newSession creates an unregistered session. An empty id gets a fresh
// UUID; an existing id resumes the selection persisted under it.
func (s *Server) newSession(id string) (*session, error) {
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return nil, err
	}
	v := visual.New(visual.Config{
		Settings:    s.cfg.Settings,
		Logger:      s.logger.With("session", id),
		Store:       &selection.CacheStore{Cache: s.cache, Key: s.keyer.SelectionKey(id)},
		Popups:      true,
		DataLabels:  s.cfg.DataLabels,
		Interactive: true,
	})
	return &session{id: id, v: v, used: time.Now()}, nil
}

// register makes sess reachable, replacing and persisting any session with
// the same id.
func (s *Server) register(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.sessions[sess.id]; ok {
		old.close(context.Background(), s.logger)
	}
	s.sessions[sess.id] = sess
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) dropSession(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	return sess, ok
}

type ctxKey int

const sessionKey ctxKey = 0

// withSession resolves the {id} URL parameter, locks the session for the
// duration of the request and stores it in the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, ok := s.session(id)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown visual %q", id)
			return
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		sess.touch()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) *session {
	return r.Context().Value(sessionKey).(*session)
}
