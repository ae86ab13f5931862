package behavior

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/observability"
	"github.com/matzehuels/linevis/pkg/selection"
)

// Surface resolves the live geometry of the rendered cells.
type Surface interface {
	// EntryAt returns the cell whose plot area contains the visual point p.
	EntryAt(p geometry.Point) (*geometry.Entry, bool)
	// Entry returns the current geometry of the cell with the given key.
	Entry(cellKey string) (*geometry.Entry, bool)
}

// Phase is the lasso gesture state.
type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

// Overlay is the lasso preview drawn over one cell. Rect and Segments are
// cell-local.
type Overlay struct {
	CellKey  string                 `json:"cell_key"`
	Offset   geometry.Point         `json:"offset"`
	Rect     geometry.Rect          `json:"rect"`
	ShowRect bool                   `json:"show_rect"`
	Segments []geometry.LineSegment `json:"segments"`
}

// Lasso selects every point inside a rectangle dragged over one plot.
type Lasso struct {
	surface Surface
	state   *selection.State
	handler selection.Handler
	logger  *log.Logger

	phase   Phase
	key     string
	origin  geometry.Point
	rect    geometry.Rect
	points  []*chart.Point
	overlay *Overlay

	unsubscribe func()
}

// NewLasso returns an idle lasso over surface.
func NewLasso(surface Surface, state *selection.State, handler selection.Handler, opts ...Option) *Lasso {
	o := newOptions(opts)
	l := &Lasso{surface: surface, state: state, handler: handler, logger: o.logger}
	l.unsubscribe = state.Subscribe(l.observe)
	return l
}

// observe drops the gesture when another behavior clears the lasso flag.
func (l *Lasso) observe(ev selection.Event) {
	if ev.Kind != selection.EventLasso || ev.HasLasso {
		return
	}
	l.phase = Idle
	l.overlay = nil
	l.points = nil
}

// Phase returns the gesture state.
func (l *Lasso) Phase() Phase { return l.phase }

// Overlay returns the current preview, or nil when none is drawn.
func (l *Lasso) Overlay() *Overlay { return l.overlay }

// Points returns the points caught by the current or last committed lasso.
func (l *Lasso) Points() []*chart.Point { return l.points }

// MouseDown starts a gesture when p lies inside a plot. It reports whether
// a gesture started.
func (l *Lasso) MouseDown(p geometry.Point) bool {
	e, ok := l.surface.EntryAt(p)
	if !ok {
		return false
	}
	l.key = e.CellKey
	l.origin = e.Bounds().Clamp(p).Sub(e.Offset)
	l.rect = geometry.RectFromPoints(l.origin, l.origin)
	l.points = nil

	l.handler.HandleClearSelection()
	l.state.ClearLabels()
	l.state.SetLasso(true)

	l.phase = Dragging
	l.overlay = &Overlay{CellKey: l.key, Offset: e.Offset, Rect: l.rect, ShowRect: true}
	l.logger.Debug("lasso start", "cell", l.key, "origin", l.origin)
	observability.Interaction().OnLassoStart(l.key)
	return true
}

// MouseMove extends the rectangle to p and re-issues the selection.
func (l *Lasso) MouseMove(p geometry.Point) {
	if l.phase != Dragging {
		return
	}
	e, ok := l.surface.Entry(l.key)
	if !ok {
		l.logger.Debug("lasso cell vanished", "cell", l.key)
		l.cancel()
		return
	}
	cur := e.Bounds().Clamp(p).Sub(e.Offset)
	l.rect = geometry.RectFromPoints(l.origin, cur)
	l.points = e.Points(l.rect)
	l.overlay = &Overlay{
		CellKey:  l.key,
		Offset:   e.Offset,
		Rect:     l.rect,
		ShowRect: true,
		Segments: e.Segments(l.rect),
	}
	l.handler.HandleSelection(l.points, false)
}

// MouseUp ends the gesture. A zero-area rectangle cancels the lasso;
// otherwise the last point set stays selected and only the line segments
// of the preview remain.
func (l *Lasso) MouseUp(p geometry.Point) {
	if l.phase != Dragging {
		return
	}
	l.MouseMove(p)
	if l.phase != Dragging {
		return
	}
	if l.rect.Degenerate() {
		l.cancel()
		return
	}
	l.phase = Idle
	l.overlay.ShowRect = false
	l.logger.Debug("lasso commit", "cell", l.key, "points", len(l.points))
	observability.Interaction().OnLassoCommit(l.key, len(l.points))
}

func (l *Lasso) cancel() {
	key := l.key
	l.phase = Idle
	l.overlay = nil
	l.points = nil
	l.handler.HandleClearSelection()
	l.state.SetLasso(false)
	l.logger.Debug("lasso cancelled", "cell", key)
	observability.Interaction().OnLassoCancel(key)
}

// DropOverlay forgets the preview of a committed lasso whose geometry is
// about to be rebuilt. The selection itself is kept.
func (l *Lasso) DropOverlay() {
	if l.phase == Idle {
		l.overlay = nil
	}
}

// Close stops observing the selection.
func (l *Lasso) Close() {
	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}
}
