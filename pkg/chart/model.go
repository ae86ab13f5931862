package chart

import (
	"slices"
	"strconv"

	"github.com/matzehuels/linevis/pkg/errors"
)

// BlankName replaces empty series names so every lineKey stays unambiguous.
const BlankName = "(Blank)"

// TooltipItem is one row of a tooltip payload.
type TooltipItem struct {
	DisplayName string `json:"displayName"`
	Value       string `json:"value"`
	Color       string `json:"color,omitempty"`
}

// Record is one input sample.
type Record struct {
	Category Category
	Series   string
	Row      string
	Column   string
	Value    float64
	Tooltips []TooltipItem
}

// Table is the tabular data model handed over by the host on each update.
type Table struct {
	Title   string
	Records []Record
}

// Point is one (category, series) sample of a rendered line.
type Point struct {
	Category Category
	Value    float64
	Tooltips []TooltipItem
	Identity Identity
	Selected bool

	Series string // display name of the owning series
	Row    int
	Column int
}

// DisplayName returns the display name of the point's first tooltip entry,
// or "" when the point carries no tooltip.
func (p *Point) DisplayName() string {
	if p == nil || len(p.Tooltips) == 0 {
		return ""
	}
	return p.Tooltips[0].DisplayName
}

// Series is one rendered line within one grid cell.
type Series struct {
	Key      string
	Name     string
	Row      int
	Column   int
	Points   []*Point
	Format   Format
	Identity Identity
	Selected bool
}

// SyncSelected sets Selected to whether any point of the series is selected.
func (s *Series) SyncSelected() {
	s.Selected = slices.ContainsFunc(s.Points, func(p *Point) bool { return p.Selected })
}

// Model is the logical chart rebuilt from a [Table] on every update.
type Model struct {
	Title        string
	RowKeys      []string
	ColumnKeys   []string
	Categories   []Category
	Names        []string
	Series       []*Series
	LineKeyIndex map[string]int
	MinValue     float64
	MaxValue     float64

	points   []*Point
	cells    map[string][]int
	catIndex map[string]int
	colors   map[string]string
}

// Rows returns the number of row groups (at least 1 for a non-empty model).
func (m *Model) Rows() int { return len(m.RowKeys) }

// Columns returns the number of column groups.
func (m *Model) Columns() int { return len(m.ColumnKeys) }

// Points returns every logical point of the model exactly once.
func (m *Model) Points() []*Point { return m.points }

// CellSeries returns the indices into Series of the lines drawn in cell (row, column).
func (m *Model) CellSeries(row, column int) []int { return m.cells[CellKey(row, column)] }

// Occupied reports whether cell (row, column) has at least one series.
func (m *Model) Occupied(row, column int) bool { return len(m.CellSeries(row, column)) > 0 }

// CategoryIndex returns the axis position of c, or -1 if c is not on the axis.
func (m *Model) CategoryIndex(c Category) int {
	if i, ok := m.catIndex[c.Key()]; ok {
		return i
	}
	return -1
}

// Line returns the series with the given lineKey.
func (m *Model) Line(key string) (*Series, bool) {
	i, ok := m.LineKeyIndex[key]
	if !ok {
		return nil, false
	}
	return m.Series[i], true
}

// Color returns the resolved color of the series name in legend order.
func (m *Model) Color(name string) string { return m.colors[name] }

// Empty reports whether the model has no series.
func (m *Model) Empty() bool { return len(m.Series) == 0 }

// SyncSelected refreshes the aggregate Selected flag of every series.
func (m *Model) SyncSelected() {
	for _, s := range m.Series {
		s.SyncSelected()
	}
}

// Build turns a table into a model. Samples sharing a category within the
// same series are summed. A nil format uses [DefaultFormat].
func Build(t Table, format FormatFunc) (*Model, error) {
	if format == nil {
		format = DefaultFormat
	}
	m := &Model{
		Title:        t.Title,
		LineKeyIndex: make(map[string]int),
		cells:        make(map[string][]int),
		catIndex:     make(map[string]int),
		colors:       make(map[string]string),
	}
	if len(t.Records) == 0 {
		return m, nil
	}

	rowIdx := indexer{}
	colIdx := indexer{}
	nameIdx := indexer{}
	catFirst := make(map[string]Category)
	var catOrder []string
	kind := t.Records[0].Category.Kind

	for i, r := range t.Records {
		if r.Category.Kind != kind {
			return nil, errors.New(errors.ErrCodeInvalidDataset,
				"record %d: category kind %s does not match %s", i, r.Category.Kind, kind)
		}
		name := seriesName(r.Series)
		if err := errors.ValidateLineKeyPart(name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "record %d", i)
		}
		rowIdx.add(r.Row)
		colIdx.add(r.Column)
		nameIdx.add(name)
		if _, ok := catFirst[r.Category.Key()]; !ok {
			catFirst[r.Category.Key()] = r.Category
			catOrder = append(catOrder, r.Category.Key())
		}
	}

	m.RowKeys = rowIdx.keys
	m.ColumnKeys = colIdx.keys
	m.Names = nameIdx.keys
	for _, k := range catOrder {
		m.Categories = append(m.Categories, catFirst[k])
	}
	if kind != KindText {
		slices.SortStableFunc(m.Categories, func(a, b Category) int { return a.Compare(b) })
	}
	for i, c := range m.Categories {
		m.catIndex[c.Key()] = i
	}

	formats := make([]Format, len(m.Names))
	for i, name := range m.Names {
		formats[i] = format(name, i)
		m.colors[name] = formats[i].Color
	}

	type sampleKey struct {
		line string
		cat  string
	}
	samples := make(map[sampleKey]*Point)
	lines := make(map[string]*Series)

	for _, r := range t.Records {
		name := seriesName(r.Series)
		row, col := rowIdx.of(r.Row), colIdx.of(r.Column)
		key := LineKey(row, col, name)
		s, ok := lines[key]
		if !ok {
			s = &Series{
				Key:      key,
				Name:     name,
				Row:      row,
				Column:   col,
				Format:   formats[nameIdx.of(name)],
				Identity: seriesIdentity(row, col, name),
			}
			lines[key] = s
		}
		sk := sampleKey{key, r.Category.Key()}
		if p, ok := samples[sk]; ok {
			p.Value += r.Value
			continue
		}
		p := &Point{
			Category: r.Category,
			Value:    r.Value,
			Tooltips: r.Tooltips,
			Identity: pointIdentity(row, col, name, r.Category),
			Series:   name,
			Row:      row,
			Column:   col,
		}
		samples[sk] = p
		s.Points = append(s.Points, p)
	}

	first := true
	for row := range m.RowKeys {
		for col := range m.ColumnKeys {
			for _, name := range m.Names {
				s, ok := lines[LineKey(row, col, name)]
				if !ok {
					continue
				}
				slices.SortStableFunc(s.Points, func(a, b *Point) int {
					return m.catIndex[a.Category.Key()] - m.catIndex[b.Category.Key()]
				})
				for _, p := range s.Points {
					if len(p.Tooltips) == 0 {
						p.Tooltips = []TooltipItem{{DisplayName: name, Value: formatValue(p.Value), Color: s.Format.Color}}
					}
					if first || p.Value < m.MinValue {
						m.MinValue = p.Value
					}
					if first || p.Value > m.MaxValue {
						m.MaxValue = p.Value
					}
					first = false
					m.points = append(m.points, p)
				}
				m.LineKeyIndex[s.Key] = len(m.Series)
				m.cells[CellKey(row, col)] = append(m.cells[CellKey(row, col)], len(m.Series))
				m.Series = append(m.Series, s)
			}
		}
	}
	return m, nil
}

func seriesName(s string) string {
	if s == "" {
		return BlankName
	}
	return s
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// indexer assigns dense indices to keys in first-appearance order.
type indexer struct {
	keys []string
	pos  map[string]int
}

func (x *indexer) add(k string) {
	if x.pos == nil {
		x.pos = make(map[string]int)
	}
	if _, ok := x.pos[k]; !ok {
		x.pos[k] = len(x.keys)
		x.keys = append(x.keys, k)
	}
}

func (x *indexer) of(k string) int { return x.pos[k] }
