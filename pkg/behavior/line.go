package behavior

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/selection"
)

// Option configures a behavior.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Line toggles the selection of a series when its line, or the dot of a
// single-point series, is clicked.
type Line struct {
	state   *selection.State
	handler selection.Handler
	model   *chart.Model
	logger  *log.Logger
}

// NewLine returns a line behavior writing to state through handler.
func NewLine(state *selection.State, handler selection.Handler, opts ...Option) *Line {
	o := newOptions(opts)
	return &Line{state: state, handler: handler, logger: o.logger}
}

// Bind attaches the model rebuilt by the latest update.
func (b *Line) Bind(m *chart.Model) { b.model = m }

// Click toggles the series with the given line key. It reports whether the
// series is selected afterwards. Unknown keys are ignored.
func (b *Line) Click(lineKey string, multi bool) bool {
	if b.model == nil {
		return false
	}
	s, ok := b.model.Line(lineKey)
	if !ok {
		b.logger.Debug("click on unknown line", "key", lineKey)
		return false
	}

	b.state.ClearLabels()
	b.state.SetLasso(false)

	selected := !s.Selected
	if selected {
		points := MatchPoints(b.model.Points(), s.Points)
		b.handler.HandleSelection(points, multi)
		b.logger.Debug("line selected", "key", lineKey, "points", len(points))
	} else {
		b.handler.HandleClearSelection()
		b.logger.Debug("line deselected", "key", lineKey)
	}
	s.Selected = selected
	return selected
}

// Opacities returns the opacity of every rendered line and dot.
func (b *Line) Opacities() selection.Opacities {
	return b.state.Opacities(b.model)
}

type pointMatch struct {
	category string
	value    float64
	name     string
}

func matchOf(p *chart.Point) pointMatch {
	return pointMatch{category: p.Category.Key(), value: p.Value, name: p.DisplayName()}
}

// MatchPoints returns every point of all whose category, value and tooltip
// display name equal those of one of targets. Identity is not compared: the
// same logical point can be represented in several cells.
func MatchPoints(all, targets []*chart.Point) []*chart.Point {
	want := make(map[pointMatch]struct{}, len(targets))
	for _, t := range targets {
		if t != nil {
			want[matchOf(t)] = struct{}{}
		}
	}
	var out []*chart.Point
	for _, p := range all {
		if _, ok := want[matchOf(p)]; ok {
			out = append(out, p)
		}
	}
	return out
}
