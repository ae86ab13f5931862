// Package dataset reads tabular chart data into a [chart.Table].
//
// Two shapes are accepted. Column-oriented sources (CSV, TSV, XLSX) carry a
// header row; [Columns] names which headers hold the category, the series,
// the value and the optional row and column groups. Any further headers
// listed in Columns.Tooltips become tooltip rows. Document sources (JSON,
// YAML) carry the records directly:
//
//	title: Revenue
//	records:
//	  - {category: "2024-01", series: North, row: EMEA, value: 12.5}
//	  - {category: "2024-02", series: North, row: EMEA, value: 14}
//
// Category kinds are inferred from the values: numbers, then dates, then
// text. [ReadFile] dispatches on the file extension.
//
// [chart.Table]: github.com/matzehuels/linevis/pkg/chart.Table
package dataset
