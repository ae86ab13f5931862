// Package layout partitions the chart surface into small-multiple cells.
//
// # Overview
//
// [Compute] takes the container size, the grid cardinalities and the
// [settings.SmallMultiples] settings and returns a [Result]: every cell with
// its absolute offset, size, title band and plot rectangle. Small multiples
// are active only when there is more than one row or column ([Active]).
//
// # Modes
//
// Matrix mode is a fixed rows x columns grid. Each cell is
//
//	max((containerWidth - titleBand)/columns - separator, minUnitWidth)
//
// wide (height analogous). The canvas may exceed the container, in which
// case [Result.Scroll] is set and the caller enables scrolling.
//
// Flow mode wraps cells left to right,
//
//	floor((containerWidth + separator) / (minUnitWidth + separator))
//
// per row, never fewer than MinColumnsPerRow. When empty cells are hidden
// the remaining cells are packed into consecutive slots in row-major order.
//
// # Single Chart
//
// A 1x1 grid yields one cell spanning the container minus the legend.
// [ResolveLegend] runs a bounded search for a legend position that leaves a
// usable plot area, escalating to Top and then to None.
//
// Layout never fails: sizes that would go negative are clamped to zero and
// minimum sizes always win.
package layout
