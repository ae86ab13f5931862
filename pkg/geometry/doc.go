// Package geometry maps logical data points to screen coordinates and back.
//
// An [Entry] is built for each rendered cell in the same pass that emits
// the line paths. It holds one [Slice] per category position: the x pixel,
// every series value crossing it (with its screen y, color and the logical
// [chart.Point] it came from) and the tooltip payload. The entries of all
// cells are registered in an [Index] keyed by cell key ("<row>_<column>_").
//
// The index answers three questions:
//
//   - which slice is nearest to the pointer ([Entry.Hover], [Index.Tooltip])
//   - which logical points lie in a lasso rectangle ([Entry.Points])
//   - which line pieces the lasso touches ([Entry.Segments])
//
// Entry coordinates are cell-local, matching the translated group the
// cell is drawn in. [Entry.Offset] converts to visual coordinates.
package geometry
