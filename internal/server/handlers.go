package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/dataset"
	"github.com/matzehuels/linevis/pkg/errors"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/observability"
	"github.com/matzehuels/linevis/pkg/visual"
)

const (
	defaultWidth  = 800.0
	defaultHeight = 600.0
	maxBodyBytes  = 8 << 20
)

// =============================================================================
// Request and Response Types
// =============================================================================

// dataRequest carries a dataset document and the viewport to lay it out in.
type dataRequest struct {
	Width   float64                  `json:"width,omitempty"`
	Height  float64                  `json:"height,omitempty"`
	Title   string                   `json:"title,omitempty"`
	Records []dataset.DocumentRecord `json:"records"`
}

func (d dataRequest) viewport() geometry.Size {
	v := geometry.Size{Width: d.Width, Height: d.Height}
	if v.Width == 0 {
		v.Width = defaultWidth
	}
	if v.Height == 0 {
		v.Height = defaultHeight
	}
	return v
}

type createRequest struct {
	// ID resumes the selection persisted under an earlier session.
	ID   string       `json:"id,omitempty"`
	Data *dataRequest `json:"data,omitempty"`
}

type createResponse struct {
	ID        string           `json:"id"`
	Selection *visual.Snapshot `json:"selection,omitempty"`
}

// event mirrors the detail of the DOM events the interactive SVG emits.
type event struct {
	Kind   string  `json:"kind"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Key    string  `json:"key,omitempty"`
	Label  string  `json:"label,omitempty"`
	Multi  bool    `json:"multi,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

type tooltipResponse struct {
	Items []tooltipItem `json:"items"`
}

type tooltipItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	// An empty body creates a session without data.
	if err := decodeJSON(w, r, &req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "decode request: %v", err)
		return
	}
	sess, err := s.newSession(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id %q", req.ID)
		return
	}
	resp := createResponse{ID: sess.id}
	if req.Data != nil {
		if err := sess.load(r, *req.Data); err != nil {
			sess.v.Close()
			writeErr(w, err)
			return
		}
		snap := sess.v.Snapshot()
		resp.Selection = &snap
	}
	s.register(sess)
	s.logger.Debug("created session", "session", sess.id)
	writeJSON(w, http.StatusCreated, resp)
}

// handleUpdate replaces the data of a visual. The data comes either from
// the request body or, with ?file=, from a file below the data directory.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if file := r.URL.Query().Get("file"); file != "" {
		table, err := s.readDataFile(file)
		if err != nil {
			writeErr(w, err)
			return
		}
		viewport, err := queryViewport(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := sess.update(r, table, viewport); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.v.Snapshot())
		return
	}

	var req dataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: %v", err)
		return
	}
	if err := sess.load(r, req); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.v.Snapshot())
}

// readDataFile reads a dataset below the configured data directory.
func (s *Server) readDataFile(file string) (chart.Table, error) {
	if s.cfg.DataDir == "" {
		return chart.Table{}, errors.New(errors.ErrCodeUnsupported, "no data directory configured")
	}
	if err := errors.ValidatePath(file); err != nil {
		return chart.Table{}, err
	}
	return dataset.ReadFile(filepath.Join(s.cfg.DataDir, filepath.FromSlash(file)), dataset.Options{})
}

func queryViewport(r *http.Request) (geometry.Size, error) {
	v := geometry.Size{Width: defaultWidth, Height: defaultHeight}
	q := r.URL.Query()
	for _, f := range []struct {
		name string
		dst  *float64
	}{{"width", &v.Width}, {"height", &v.Height}} {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return geometry.Size{}, errors.Wrap(errors.ErrCodeInvalidViewport, err, "%s %q", f.name, raw)
		}
		*f.dst = n
	}
	return v, nil
}

// load converts the document into a table and updates the visual.
func (sess *session) load(r *http.Request, req dataRequest) error {
	table, err := dataset.Document{Title: req.Title, Records: req.Records}.Table(dataset.Options{})
	if err != nil {
		return err
	}
	return sess.update(r, table, req.viewport())
}

func (sess *session) update(r *http.Request, table chart.Table, viewport geometry.Size) error {
	if err := sess.v.Update(r.Context(), table, viewport); err != nil {
		return err
	}
	sess.table, sess.viewport, sess.loaded = table, viewport, true
	return nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !requireLoaded(w, sess) {
		return
	}
	var events []event
	if err := decodeJSON(w, r, &events); err != nil {
		writeError(w, http.StatusBadRequest, "decode events: %v", err)
		return
	}
	// Batches are not atomic: events before a failing one stay applied and
	// are persisted, and the error reply carries the resulting selection.
	for i, ev := range events {
		if err := sess.apply(r, ev); err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInvalidEvent
			}
			err = errors.Wrap(code, err, "event %d (%s): %s", i, ev.Kind, errors.UserMessage(err))
			s.persist(r, sess)
			writeJSON(w, errors.HTTPStatus(err), eventError{
				errorResponse: errorResponse{Error: errors.UserMessage(err), Code: string(code)},
				Applied:       i,
				Selection:     sess.v.Snapshot(),
			})
			return
		}
	}
	s.persist(r, sess)
	writeJSON(w, http.StatusOK, sess.v.Snapshot())
}

// eventError reports a batch that stopped at event Applied.
type eventError struct {
	errorResponse
	Applied   int             `json:"applied"`
	Selection visual.Snapshot `json:"selection"`
}

func (s *Server) persist(r *http.Request, sess *session) {
	if err := sess.v.Persist(r.Context()); err != nil {
		s.logger.Warn("persist selection", "session", sess.id, "error", err)
	}
}

func (sess *session) apply(r *http.Request, ev event) error {
	p := geometry.Point{X: ev.X, Y: ev.Y}
	v := sess.v
	switch ev.Kind {
	case "mousedown":
		v.MouseDown(p)
	case "mousemove":
		v.MouseMove(p)
	case "mouseup":
		v.MouseUp(p)
	case "hover":
		v.Hover(p)
	case "line":
		if _, ok := v.Model().Line(ev.Key); !ok {
			return errors.New(errors.ErrCodeInvalidLineKey, "unknown line %q", ev.Key)
		}
		v.ClickLine(ev.Key, ev.Multi)
	case "legend":
		v.ClickLegend(ev.Label, ev.Multi)
	case "legend-background":
		v.ClickLegendBackground()
	case "clear":
		v.ClearSelection()
	case "resize":
		size := geometry.Size{Width: ev.Width, Height: ev.Height}
		if err := v.Update(r.Context(), sess.table, size); err != nil {
			return err
		}
		sess.viewport = size
	default:
		return errors.New(errors.ErrCodeInvalidEvent, "unknown event kind %q", ev.Kind)
	}
	return nil
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !requireLoaded(w, sess) {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(sess.v.Render())
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).v.Snapshot())
}

func (s *Server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	resp := tooltipResponse{Items: []tooltipItem{}}
	for _, it := range sessionFrom(r).v.Tooltip() {
		resp.Items = append(resp.Items, tooltipItem{Name: it.DisplayName, Value: it.Value, Color: it.Color})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !requireLoaded(w, sess) {
		return
	}
	writeJSON(w, http.StatusOK, sess.v.LayoutResult())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.dropSession(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown visual %q", id)
		return
	}
	sess.close(r.Context(), s.logger)
	s.logger.Debug("closed session", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func requireLoaded(w http.ResponseWriter, sess *session) bool {
	if !sess.loaded {
		writeError(w, http.StatusConflict, "visual %s has no data yet", sess.id)
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// writeErr replies with the status mapped from the error code.
func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

// requestLogger logs each request and reports it to the HTTP hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
