package layout

import (
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/legend"
)

const (
	// ResponsiveMinWidth and ResponsiveMinHeight are the smallest plot area
	// a legend may leave behind in single-chart mode.
	ResponsiveMinWidth  = 50.0
	ResponsiveMinHeight = 50.0

	// maxStepCount bounds the legend search. Each step is a full legend
	// layout pass.
	maxStepCount = 2
)

// LegendResolution is the outcome of [ResolveLegend].
type LegendResolution struct {
	Position legend.Position
	Margin   legend.Margin
	Steps    int
	Plot     geometry.Size
}

// ResolveLegend picks a legend position for a single chart that leaves at
// least ResponsiveMinWidth x ResponsiveMinHeight for the plot. The first
// failing position escalates to Top, the next failure drops the legend.
// None is terminal.
func ResolveLegend(requested legend.Position, viewport geometry.Size, r legend.Renderer, title string, entries []legend.Entry, axes AxisMeasurer) LegendResolution {
	if axes == nil {
		axes = noAxes{}
	}
	viewport = viewport.Clamp()
	pos := requested
	escalated := false
	res := LegendResolution{Position: legend.None}

	for res.Steps < maxStepCount {
		if pos == legend.None {
			res.Plot = plotArea(viewport, legend.None, legend.Margin{}, axes)
			return res
		}
		margin := r.Render(title, entries, pos, viewport)
		res.Steps++
		plot := plotArea(viewport, pos, margin, axes)

		next := pos
		if plot.Width < ResponsiveMinWidth || plot.Height < ResponsiveMinHeight {
			if escalated || pos == legend.Top {
				next = legend.None
			} else {
				next = legend.Top
			}
			escalated = true
		}
		if next == pos {
			res.Position, res.Margin, res.Plot = pos, margin, plot
			return res
		}
		pos = next
	}

	if pos == legend.None {
		res.Plot = plotArea(viewport, legend.None, legend.Margin{}, axes)
		return res
	}
	// Budget spent on an untested candidate: lay it out once for its margin.
	res.Position = pos
	res.Margin = r.Render(title, entries, pos, viewport)
	res.Plot = plotArea(viewport, pos, res.Margin, axes)
	return res
}

func plotArea(viewport geometry.Size, pos legend.Position, m legend.Margin, axes AxisMeasurer) geometry.Size {
	area := available(viewport, pos, m)
	in := axes.Measure(area)
	return geometry.Size{
		Width:  area.Width - in.Left - in.Right,
		Height: area.Height - in.Top - in.Bottom,
	}.Clamp()
}
