// Package legend describes legend positions, entries and icon shapes, and
// measures how much room a legend takes.
//
// The layout engine treats the legend as an opaque cost: it asks a
// [Renderer] for the [Margin] a legend occupies at a candidate [Position]
// and subtracts it from the space available to the plot. [Measurer] is the
// built-in Renderer; it estimates text widths with pkg/fonts and returns a
// full [Placement] that the SVG sink draws from.
//
// Icon glyphs are a closed enumeration ([IconShape]). Each variant has its
// own width and path function:
//
//	m := legend.NewMeasurer(legend.IconLine)
//	margin := m.Render("Region", entries, legend.Top, geometry.Size{Width: 600, Height: 400})
package legend
