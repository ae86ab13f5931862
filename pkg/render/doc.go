// Package render draws a laid-out chart model as SVG.
//
// # Overview
//
// [RenderSVG] walks the cells of a [layout.Result] and emits, per cell, the
// optional title band, gridlines and axis labels, one group per series line
// with its markers, and optionally data labels and hover popups. The
// geometry index used for tooltips and lasso hit-testing is built in the
// same pass from the same coordinate mapping, so the two never disagree.
//
//	svg, idx := render.RenderSVG(model, result,
//	    render.WithSettings(s),
//	    render.WithOpacity(state.Opacities(model)),
//	    render.WithPopups(),
//	)
//
// # Scales
//
// Values use a linear scale from go-moremath, widened to nice tick
// boundaries ([ValueScale]). [MeasureAxes] measures the resulting tick
// labels and is handed to the layout engine as its axis cost.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG output with the external rsvg-convert
// tool (from librsvg). [RenderJSON] exports the layout together with the
// geometry index for hosts that draw on their own.
//
// [layout.Result]: github.com/matzehuels/linevis/pkg/layout.Result
package render
