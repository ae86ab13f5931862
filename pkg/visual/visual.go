// Package visual is the top-level entry point a host drives: one [Visual]
// per rendered chart.
//
// The host calls [Visual.Update] whenever data or the viewport change. The
// update pass rebuilds the model, the layout and the geometry index from
// scratch, re-applies the persisted selection and rebinds the behaviors, so
// no interaction ever sees stale geometry. Pointer and click events are then
// forwarded through the interaction methods:
//
//	v := visual.New(visual.Config{Settings: s, Logger: logger})
//	if err := v.Update(ctx, table, geometry.Size{Width: 800, Height: 600}); err != nil {
//	    return err
//	}
//	v.MouseDown(geometry.Point{X: 120, Y: 80})
//	v.MouseMove(geometry.Point{X: 300, Y: 200})
//	v.MouseUp(geometry.Point{X: 300, Y: 200})
//	svg := v.Render()
//
// A Visual is single-threaded. Hosts serving concurrent requests must
// serialize calls on the same Visual.
package visual

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linevis/pkg/behavior"
	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/errors"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/layout"
	"github.com/matzehuels/linevis/pkg/legend"
	"github.com/matzehuels/linevis/pkg/render"
	"github.com/matzehuels/linevis/pkg/selection"
	"github.com/matzehuels/linevis/pkg/settings"
)

// Config configures a Visual.
type Config struct {
	// Settings is the formatting settings bag. Nil means [settings.Default].
	Settings *settings.Settings
	// Logger receives update and interaction logs. Nil discards output.
	Logger *log.Logger
	// Store persists the selected identity set. It is read on the first
	// update and written by [Visual.Persist].
	Store selection.Store
	// Popups embeds hover popups into rendered documents.
	Popups bool
	// DataLabels draws values above points.
	DataLabels bool
	// Interactive embeds the event forwarding script.
	Interactive bool
}

// Visual owns the model, layout, geometry and selection of one chart.
type Visual struct {
	cfg      Config
	settings *settings.Settings
	logger   *log.Logger

	state  *selection.State
	svc    *selection.Service
	line   *behavior.Line
	legend *behavior.Legend
	lasso  *behavior.Lasso

	model    *chart.Model
	layout   layout.Result
	index    *geometry.Index
	entries  []legend.Entry
	hovered  *geometry.Entry
	restored bool
	updates  int
}

// New returns a Visual with an empty selection. Nothing can be rendered
// before the first [Visual.Update].
func New(cfg Config) *Visual {
	v := &Visual{
		cfg:      cfg,
		settings: cfg.Settings,
		logger:   cfg.Logger,
		index:    geometry.NewIndex(),
	}
	if v.settings == nil {
		v.settings = settings.Default()
	}
	if v.logger == nil {
		v.logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	v.state = selection.NewState()
	svcOpts := []selection.Option{selection.WithLogger(v.logger)}
	if cfg.Store != nil {
		svcOpts = append(svcOpts, selection.WithStore(cfg.Store))
	}
	v.svc = selection.NewService(v.state, svcOpts...)

	bopt := behavior.WithLogger(v.logger)
	v.line = behavior.NewLine(v.state, v.svc, bopt)
	v.legend = behavior.NewLegend(v.state, v.svc, bopt)
	v.lasso = behavior.NewLasso(v, v.state, v.svc, bopt)
	return v
}

// Ensure Visual can back the lasso.
var _ behavior.Surface = (*Visual)(nil)

// Update rebuilds everything from table for the given viewport. Errors are
// logged and returned unchanged.
func (v *Visual) Update(ctx context.Context, table chart.Table, viewport geometry.Size) error {
	if err := v.update(ctx, table, viewport); err != nil {
		v.logger.Error("update failed", "error", err)
		return err
	}
	return nil
}

func (v *Visual) update(ctx context.Context, table chart.Table, viewport geometry.Size) error {
	start := time.Now()
	if err := errors.ValidateViewport(viewport.Width, viewport.Height); err != nil {
		return err
	}
	if err := v.settings.Validate(); err != nil {
		return err
	}

	m, err := chart.Build(table, v.settings.FormatFunc())
	if err != nil {
		return err
	}
	entries := legend.EntriesFor(m)
	res := Layout(m, entries, v.settings, viewport)
	_, idx := render.RenderSVG(m, res, render.WithSettings(v.settings))

	if v.hovered != nil {
		v.hovered.EndHover()
		v.hovered = nil
	}
	v.lasso.DropOverlay()
	v.model, v.layout, v.index, v.entries = m, res, idx, entries

	v.svc.Bind(m)
	if !v.restored {
		if err := v.svc.Restore(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "restore selection")
		}
		v.restored = true
	}
	v.svc.ApplySelectionStateToData(m.Points())
	m.SyncSelected()
	v.line.Bind(m)
	v.legend.Bind(m, entries)
	v.updates++

	v.logger.Debug("updated",
		"series", len(m.Series),
		"cells", len(res.Cells),
		"legend", res.LegendPosition,
		"selected", v.state.Len(),
		"duration", time.Since(start))
	return nil
}

// Layout computes the layout of m the way [Visual.Update] does, reserving
// legend and axis space with the measurers the SVG sink draws with.
func Layout(m *chart.Model, entries []legend.Entry, s *settings.Settings, viewport geometry.Size) layout.Result {
	in := layout.Input{
		Container: viewport,
		Rows:      m.Rows(),
		Columns:   m.Columns(),
		Occupied:  m.Occupied,
	}
	return layout.Compute(in, s.SmallMultiples,
		layout.WithLegend(render.LegendMeasurer(s), s.LegendTitle(), entries, s.LegendPosition()),
		layout.WithAxes(render.MeasureAxes(m, s.Axes)),
	)
}

// =============================================================================
// Surface
// =============================================================================

// EntryAt implements [behavior.Surface] against the live geometry index.
func (v *Visual) EntryAt(p geometry.Point) (*geometry.Entry, bool) { return v.index.EntryAt(p) }

// Entry implements [behavior.Surface] against the live geometry index.
func (v *Visual) Entry(cellKey string) (*geometry.Entry, bool) { return v.index.Entry(cellKey) }

// =============================================================================
// Interaction
// =============================================================================

// MouseDown starts a lasso when p is inside a plot area.
func (v *Visual) MouseDown(p geometry.Point) bool { return v.lasso.MouseDown(p) }

// MouseMove extends an active lasso.
func (v *Visual) MouseMove(p geometry.Point) { v.lasso.MouseMove(p) }

// MouseUp commits or cancels an active lasso.
func (v *Visual) MouseUp(p geometry.Point) { v.lasso.MouseUp(p) }

// ClickLine toggles the selection of the line with the given key and
// reports whether it is selected afterwards.
func (v *Visual) ClickLine(lineKey string, multi bool) bool { return v.line.Click(lineKey, multi) }

// ClickLegend applies a legend item click.
func (v *Visual) ClickLegend(label string, multi bool) { v.legend.Click(label, multi) }

// ClickLegendBackground clears the legend label set.
func (v *Visual) ClickLegendBackground() { v.legend.ClearCatcher() }

// ClearSelection drops every selected point and legend label.
func (v *Visual) ClearSelection() {
	v.state.SetLasso(false)
	v.state.ClearLabels()
	v.svc.HandleClearSelection()
}

// Hover moves the hover index of the cell under p and returns the hovered
// slice. Leaving every plot ends the hover session.
func (v *Visual) Hover(p geometry.Point) (*geometry.Slice, bool) {
	e, ok := v.index.EntryAt(p)
	if v.hovered != nil && v.hovered != e {
		v.hovered.EndHover()
		v.hovered = nil
	}
	if !ok {
		return nil, false
	}
	v.hovered = e
	return e.Hover(p.X - e.Offset.X)
}

// Tooltip returns the payload of the hovered slice, or nil when nothing is
// hovered or the slice carries no data.
func (v *Visual) Tooltip() []chart.TooltipItem {
	if v.hovered == nil {
		return nil
	}
	s, ok := v.hovered.Hovered()
	if !ok || len(s.Tooltip) == 0 {
		return nil
	}
	return s.Tooltip
}

// Persist saves the selected identity set if it changed.
func (v *Visual) Persist(ctx context.Context) error { return v.svc.Persist(ctx) }

// Close detaches the behaviors from the selection state.
func (v *Visual) Close() {
	v.legend.Close()
	v.lasso.Close()
}

// =============================================================================
// Accessors
// =============================================================================

// Model returns the model of the last successful update, or nil.
func (v *Visual) Model() *chart.Model { return v.model }

// LayoutResult returns the layout of the last successful update.
func (v *Visual) LayoutResult() layout.Result { return v.layout }

// Index returns the live geometry index.
func (v *Visual) Index() *geometry.Index { return v.index }

// State returns the selection state.
func (v *Visual) State() *selection.State { return v.state }

// Settings returns the settings in use.
func (v *Visual) Settings() *settings.Settings { return v.settings }

// LassoPhase returns the lasso gesture state.
func (v *Visual) LassoPhase() behavior.Phase { return v.lasso.Phase() }

// Render draws the chart with the current opacities, legend icons and
// lasso overlay. It returns nil before the first update.
func (v *Visual) Render() []byte {
	if v.model == nil {
		return nil
	}
	opts := []render.SVGOption{
		render.WithSettings(v.settings),
		render.WithOpacity(v.line.Opacities()),
		render.WithLegendIcons(v.legend.Icons()),
		render.WithOverlay(v.lasso.Overlay()),
	}
	if v.cfg.Popups {
		opts = append(opts, render.WithPopups())
	}
	if v.cfg.DataLabels {
		opts = append(opts, render.WithDataLabels())
	}
	if v.cfg.Interactive {
		opts = append(opts, render.WithInteraction())
	}
	svg, _ := render.RenderSVG(v.model, v.layout, opts...)
	return svg
}
