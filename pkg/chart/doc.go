// Package chart defines the logical data model of a small-multiples line chart.
//
// # Overview
//
// A [Table] is the tabular input handed over by the host: one [Record] per
// (category, series, row group, column group) sample. [Build] turns a table
// into a [Model], the structure every other stage consumes:
//
//   - Row and column grouping keys (the small-multiples grid dimensions)
//   - Categories in axis order
//   - One [Series] per (row, column, series name) combination with data
//   - Every logical [Point] exactly once, with a stable [Identity]
//
// Models are rebuilt from scratch on every update. The only thing that
// survives an update is the set of selected identities, which is why
// identities are derived deterministically from the data coordinates rather
// than generated randomly.
//
// # Line Keys
//
// Rendered lines are addressed by a lineKey of the form
//
//	<rowIndex>_<columnIndex>_<seriesDisplayName>
//
// The row/column prefix ("0_2_") addresses a grid cell. [LineKey], [CellKey]
// and [ParseLineKey] are the only functions that build or split these keys;
// [Model.LineKeyIndex] maps a key back to its position in [Model.Series].
//
// # Display Attributes
//
// Each series carries a resolved [Format] (color, stroke width, [LineStyle],
// marker [Shape], stepped flag). Callers supply a [FormatFunc] to [Build];
// pkg/settings provides one that applies per-series overrides on top of the
// global shape settings.
package chart
