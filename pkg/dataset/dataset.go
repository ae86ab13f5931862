package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/errors"
)

// Columns maps header names of column-oriented sources.
type Columns struct {
	Category string
	Series   string
	Value    string
	Row      string
	Column   string
	Tooltips []string
}

// DefaultColumns returns the conventional header names.
func DefaultColumns() Columns {
	return Columns{
		Category: "category",
		Series:   "series",
		Value:    "value",
		Row:      "row",
		Column:   "column",
	}
}

// Options configures reading.
type Options struct {
	Columns Columns
	// Sheet selects the XLSX worksheet. Empty means the first one.
	Sheet string
	// Title overrides the table title.
	Title string
}

func (o *Options) setDefaults() {
	d := DefaultColumns()
	if o.Columns.Category == "" {
		o.Columns.Category = d.Category
	}
	if o.Columns.Series == "" {
		o.Columns.Series = d.Series
	}
	if o.Columns.Value == "" {
		o.Columns.Value = d.Value
	}
	if o.Columns.Row == "" {
		o.Columns.Row = d.Row
	}
	if o.Columns.Column == "" {
		o.Columns.Column = d.Column
	}
}

// ReadFile reads path according to its extension (.json, .yaml, .yml,
// .csv, .tsv, .xlsx).
func ReadFile(path string, opts Options) (chart.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return chart.Table{}, wrapOpen(path, err)
		}
		defer f.Close()
		return readWorkbook(f, opts, strings.TrimSuffix(filepath.Base(path), ext))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return chart.Table{}, wrapOpen(path, err)
	}
	switch ext {
	case ".json":
		return ReadJSON(bytes.NewReader(data), opts)
	case ".yaml", ".yml":
		return ReadYAML(bytes.NewReader(data), opts)
	case ".csv":
		return ReadCSV(bytes.NewReader(data), ',', opts)
	case ".tsv":
		return ReadCSV(bytes.NewReader(data), '\t', opts)
	default:
		return chart.Table{}, errors.New(errors.ErrCodeUnsupported, "unsupported dataset format %q", ext)
	}
}

func wrapOpen(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
	}
	return fmt.Errorf("read %s: %w", path, err)
}

// =============================================================================
// Documents
// =============================================================================

// Document is the JSON/YAML representation of a table.
type Document struct {
	Title   string           `json:"title,omitempty" yaml:"title,omitempty"`
	Records []DocumentRecord `json:"records" yaml:"records"`
}

// DocumentRecord is one record of a [Document]. Category is kept as a
// string so that the kind can be inferred across all records.
type DocumentRecord struct {
	Category string        `json:"category" yaml:"category"`
	Series   string        `json:"series,omitempty" yaml:"series,omitempty"`
	Row      string        `json:"row,omitempty" yaml:"row,omitempty"`
	Column   string        `json:"column,omitempty" yaml:"column,omitempty"`
	Value    float64       `json:"value" yaml:"value"`
	Tooltips []TooltipItem `json:"tooltips,omitempty" yaml:"tooltips,omitempty"`
}

// TooltipItem is a tooltip row of a [DocumentRecord].
type TooltipItem struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ReadJSON reads a JSON [Document].
func ReadJSON(r io.Reader, opts Options) (chart.Table, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return chart.Table{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode json")
	}
	return doc.Table(opts)
}

// ReadYAML reads a YAML [Document].
func ReadYAML(r io.Reader, opts Options) (chart.Table, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return chart.Table{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode yaml")
	}
	return doc.Table(opts)
}

// Table converts the document into a chart table.
func (d Document) Table(opts Options) (chart.Table, error) {
	values := make([]string, len(d.Records))
	for i, rec := range d.Records {
		values[i] = rec.Category
	}
	kind := chart.InferKind(values)

	t := chart.Table{Title: d.Title, Records: make([]chart.Record, 0, len(d.Records))}
	if opts.Title != "" {
		t.Title = opts.Title
	}
	for i, rec := range d.Records {
		cat, err := chart.ParseCategory(rec.Category, kind)
		if err != nil {
			return chart.Table{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "record %d", i)
		}
		out := chart.Record{Category: cat, Series: rec.Series, Row: rec.Row, Column: rec.Column, Value: rec.Value}
		if len(rec.Tooltips) > 0 {
			out.Tooltips = append(out.Tooltips, seriesTooltip(rec.Series, rec.Value))
			for _, tt := range rec.Tooltips {
				out.Tooltips = append(out.Tooltips, chart.TooltipItem{DisplayName: tt.Name, Value: tt.Value})
			}
		}
		t.Records = append(t.Records, out)
	}
	return t, nil
}

// seriesTooltip is the leading tooltip row; its display name is what line
// selection matches points by.
func seriesTooltip(series string, value float64) chart.TooltipItem {
	name := series
	if name == "" {
		name = chart.BlankName
	}
	return chart.TooltipItem{DisplayName: name, Value: strconv.FormatFloat(value, 'f', -1, 64)}
}

// =============================================================================
// Column-oriented sources
// =============================================================================

// ReadCSV reads delimiter-separated values with a header row.
func ReadCSV(r io.Reader, comma rune, opts Options) (chart.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return chart.Table{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode csv")
	}
	return FromRows(rows, opts)
}

// ReadXLSX reads a worksheet of an XLSX workbook.
func ReadXLSX(r io.Reader, opts Options) (chart.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return chart.Table{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "open workbook")
	}
	defer f.Close()
	return readWorkbook(f, opts, "")
}

func readWorkbook(f *excelize.File, opts Options, title string) (chart.Table, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return chart.Table{}, errors.New(errors.ErrCodeInvalidDataset, "workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return chart.Table{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read sheet %q", sheet)
	}
	if opts.Title == "" {
		opts.Title = title
	}
	return FromRows(rows, opts)
}

// FromRows converts a header row plus data rows into a table. Rows with a
// blank value are skipped.
func FromRows(rows [][]string, opts Options) (chart.Table, error) {
	opts.setDefaults()
	t := chart.Table{Title: opts.Title}
	if len(rows) == 0 {
		return t, nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	col := func(name string) int {
		if i, ok := header[strings.ToLower(name)]; ok {
			return i
		}
		return -1
	}
	c := opts.Columns
	catCol, seriesCol, valueCol := col(c.Category), col(c.Series), col(c.Value)
	rowCol, columnCol := col(c.Row), col(c.Column)
	if catCol < 0 {
		return t, errors.New(errors.ErrCodeInvalidDataset, "missing category column %q", c.Category)
	}
	if valueCol < 0 {
		return t, errors.New(errors.ErrCodeInvalidDataset, "missing value column %q", c.Value)
	}
	tipCols := make([]int, len(c.Tooltips))
	for i, name := range c.Tooltips {
		if tipCols[i] = col(name); tipCols[i] < 0 {
			return t, errors.New(errors.ErrCodeInvalidDataset, "missing tooltip column %q", name)
		}
	}

	body := rows[1:]
	cats := make([]string, len(body))
	for i, row := range body {
		cats[i] = cell(row, catCol)
	}
	kind := chart.InferKind(cats)

	for i, row := range body {
		line := i + 2
		raw := cell(row, valueCol)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return chart.Table{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "line %d: value %q", line, raw)
		}
		cat, err := chart.ParseCategory(cats[i], kind)
		if err != nil {
			return chart.Table{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "line %d", line)
		}
		rec := chart.Record{
			Category: cat,
			Series:   cell(row, seriesCol),
			Row:      cell(row, rowCol),
			Column:   cell(row, columnCol),
			Value:    value,
		}
		if len(tipCols) > 0 {
			rec.Tooltips = append(rec.Tooltips, seriesTooltip(rec.Series, value))
			for j, tc := range tipCols {
				rec.Tooltips = append(rec.Tooltips, chart.TooltipItem{DisplayName: c.Tooltips[j], Value: cell(row, tc)})
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
