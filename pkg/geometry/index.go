package geometry

import (
	"math"
	"slices"

	"github.com/matzehuels/linevis/pkg/chart"
)

// SeriesValue is one series crossing a vertical slice.
type SeriesValue struct {
	Key        string         `json:"key"`
	Series     string         `json:"series"`
	Y          float64        `json:"y"`
	Value      float64        `json:"value"`
	Color      string         `json:"color"`
	ShowMarker bool           `json:"show_marker"`
	Identity   chart.Identity `json:"identity"`
	Point      *chart.Point   `json:"-"`
}

// Slice is every series value sharing one category (x) position.
type Slice struct {
	X        float64             `json:"x"`
	Category string              `json:"category"`
	Values   []SeriesValue       `json:"values"`
	Tooltip  []chart.TooltipItem `json:"tooltip"`
}

// Entry is the geometry of one rendered cell. Coordinates are cell-local;
// Offset translates them into the visual.
type Entry struct {
	CellKey string  `json:"cell_key"`
	Offset  Point   `json:"offset"`
	Plot    Rect    `json:"plot"`
	Slices  []Slice `json:"slices"`

	hover   int
	hovered bool
}

// Build collects the vertical slices of one cell. xOf and yOf map data
// coordinates to cell-local pixels. Categories no series crosses produce
// no slice.
func Build(cellKey string, offset Point, plot Rect, series []*chart.Series, xOf func(chart.Category) float64, yOf func(float64) float64) *Entry {
	e := &Entry{CellKey: cellKey, Offset: offset, Plot: plot}
	byCat := make(map[string]int)

	for _, s := range series {
		if s == nil {
			continue
		}
		marker := s.Format.ShowMarkers || len(s.Points) == 1
		for _, p := range s.Points {
			k := p.Category.Key()
			i, ok := byCat[k]
			if !ok {
				i = len(e.Slices)
				byCat[k] = i
				e.Slices = append(e.Slices, Slice{X: xOf(p.Category), Category: p.Category.String()})
			}
			sl := &e.Slices[i]
			sl.Values = append(sl.Values, SeriesValue{
				Key:        s.Key,
				Series:     s.Name,
				Y:          yOf(p.Value),
				Value:      p.Value,
				Color:      s.Format.Color,
				ShowMarker: marker,
				Identity:   p.Identity,
				Point:      p,
			})
			for _, item := range p.Tooltips {
				if item.Color == "" {
					item.Color = s.Format.Color
				}
				sl.Tooltip = append(sl.Tooltip, item)
			}
		}
	}

	slices.SortStableFunc(e.Slices, func(a, b Slice) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		}
		return 0
	})
	return e
}

// Bounds returns the plot rectangle in visual coordinates.
func (e *Entry) Bounds() Rect { return e.Plot.Translate(e.Offset) }

// Nearest returns the index of the slice closest to the cell-local x, or -1.
func (e *Entry) Nearest(x float64) int {
	best, dist := -1, math.Inf(1)
	for i, s := range e.Slices {
		if d := math.Abs(s.X - x); d < dist {
			best, dist = i, d
		}
	}
	return best
}

// Hover moves the shared hover index to the slice nearest to x and returns it.
func (e *Entry) Hover(x float64) (*Slice, bool) {
	i := e.Nearest(x)
	if i < 0 {
		return nil, false
	}
	e.hover, e.hovered = i, true
	return &e.Slices[i], true
}

// Hovered returns the slice last set by [Entry.Hover]. It reports false
// until Hover has run in the current hover session.
func (e *Entry) Hovered() (*Slice, bool) {
	if !e.hovered || e.hover >= len(e.Slices) {
		return nil, false
	}
	return &e.Slices[e.hover], true
}

// EndHover closes the hover session.
func (e *Entry) EndHover() { e.hovered = false }

// Points returns every logical point of the cell inside r (cell-local,
// boundary included). Overlapping series all contribute; points are
// deduplicated by identity only.
func (e *Entry) Points(r Rect) []*chart.Point {
	var out []*chart.Point
	seen := make(map[chart.Identity]bool)
	for _, s := range e.Slices {
		for _, v := range s.Values {
			if v.Point == nil || !r.Contains(Point{s.X, v.Y}) || seen[v.Identity] {
				continue
			}
			seen[v.Identity] = true
			out = append(out, v.Point)
		}
	}
	return out
}

// LineSegment is a piece of a rendered line.
type LineSegment struct {
	Key   string `json:"key"`
	Color string `json:"color"`
	Segment
}

// Segments reconstructs the pieces of every line in the cell that touch r.
func (e *Entry) Segments(r Rect) []LineSegment {
	type last struct {
		p     Point
		color string
	}
	prev := make(map[string]last)
	var out []LineSegment
	for _, s := range e.Slices {
		for _, v := range s.Values {
			p := Point{s.X, v.Y}
			if l, ok := prev[v.Key]; ok {
				seg := Segment{From: l.p, To: p}
				if seg.Intersects(r) {
					out = append(out, LineSegment{Key: v.Key, Color: v.Color, Segment: seg})
				}
			}
			prev[v.Key] = last{p, v.Color}
		}
	}
	return out
}

// Index is the registry of every rendered cell's geometry, keyed by cell key.
type Index struct {
	entries map[string]*Entry
	order   []string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]*Entry)}
}

// Add registers e, replacing any entry with the same cell key.
func (x *Index) Add(e *Entry) {
	if e == nil {
		return
	}
	if _, ok := x.entries[e.CellKey]; !ok {
		x.order = append(x.order, e.CellKey)
	}
	x.entries[e.CellKey] = e
}

// Merge adds every entry of other.
func (x *Index) Merge(other *Index) {
	if other == nil {
		return
	}
	for _, k := range other.order {
		x.Add(other.entries[k])
	}
}

// Entry returns the geometry of the cell with the given key.
func (x *Index) Entry(key string) (*Entry, bool) {
	if x == nil {
		return nil, false
	}
	e, ok := x.entries[key]
	return e, ok
}

// Keys returns the cell keys in insertion order.
func (x *Index) Keys() []string { return slices.Clone(x.order) }

// Len returns the number of cells.
func (x *Index) Len() int { return len(x.order) }

// Entries returns the entries in insertion order.
func (x *Index) Entries() []*Entry {
	out := make([]*Entry, 0, len(x.order))
	for _, k := range x.order {
		out = append(out, x.entries[k])
	}
	return out
}

// EntryAt returns the cell whose plot area contains the visual point p.
func (x *Index) EntryAt(p Point) (*Entry, bool) {
	if x == nil {
		return nil, false
	}
	for _, k := range x.order {
		if e := x.entries[k]; e.Bounds().Contains(p) {
			return e, true
		}
	}
	return nil, false
}

// Points returns the points of cell key inside the cell-local rectangle r.
func (x *Index) Points(key string, r Rect) []*chart.Point {
	e, ok := x.Entry(key)
	if !ok {
		return nil
	}
	return e.Points(r)
}

// Segments returns the line pieces of cell key touching r.
func (x *Index) Segments(key string, r Rect) []LineSegment {
	e, ok := x.Entry(key)
	if !ok {
		return nil
	}
	return e.Segments(r)
}

// Tooltip returns the tooltip payload of the slice nearest to the visual
// point p, or nil when p is outside every plot or the slice has no data.
func (x *Index) Tooltip(p Point) []chart.TooltipItem {
	e, ok := x.EntryAt(p)
	if !ok {
		return nil
	}
	s, ok := e.Hover(p.X - e.Offset.X)
	if !ok || len(s.Tooltip) == 0 {
		return nil
	}
	return s.Tooltip
}
