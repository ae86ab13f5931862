package layout

import (
	"math"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/legend"
	"github.com/matzehuels/linevis/pkg/settings"
)

// Input describes what has to be laid out.
type Input struct {
	Container geometry.Size
	Rows      int
	Columns   int
	// Occupied reports whether a cell has any series. Nil means every cell is occupied.
	Occupied func(row, column int) bool
}

// Cell is one small-multiple unit. X and Y are absolute within the visual.
type Cell struct {
	Row         int           `json:"row"`
	Column      int           `json:"column"`
	Key         string        `json:"key"`
	Slot        int           `json:"slot"`
	X           float64       `json:"x"`
	Y           float64       `json:"y"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	TitleHeight float64       `json:"title_height"`
	Plot        geometry.Rect `json:"plot"` // cell-local
	Empty       bool          `json:"empty"`
}

// Offset returns the translation of the cell.
func (c Cell) Offset() geometry.Point { return geometry.Point{X: c.X, Y: c.Y} }

// Bounds returns the cell rectangle in visual coordinates.
func (c Cell) Bounds() geometry.Rect {
	return geometry.Rect{Left: c.X, Top: c.Y, Right: c.X + c.Width, Bottom: c.Y + c.Height}
}

// PlotBounds returns the plot area in visual coordinates.
func (c Cell) PlotBounds() geometry.Rect { return c.Plot.Translate(c.Offset()) }

// Result is a computed layout.
type Result struct {
	Active         bool            `json:"active"`
	Mode           settings.Mode   `json:"mode"`
	Cells          []Cell          `json:"cells"`
	PerRow         int             `json:"per_row"`
	VisualRows     int             `json:"visual_rows"`
	Origin         geometry.Point  `json:"origin"`
	Container      geometry.Size   `json:"container"`
	Canvas         geometry.Size   `json:"canvas"`
	Scroll         bool            `json:"scroll"`
	TitleBand      float64         `json:"title_band"` // matrix row and column header band
	LegendPosition legend.Position `json:"legend_position"`
	LegendMargin   legend.Margin   `json:"legend_margin"`
	LegendSteps    int             `json:"legend_steps"`
}

// Cell returns the cell with the given key prefix.
func (r *Result) Cell(key string) (*Cell, bool) {
	for i := range r.Cells {
		if r.Cells[i].Key == key {
			return &r.Cells[i], true
		}
	}
	return nil, false
}

// CellAt returns the non-empty cell whose plot area contains p.
func (r *Result) CellAt(p geometry.Point) (*Cell, bool) {
	for i := range r.Cells {
		c := &r.Cells[i]
		if !c.Empty && c.PlotBounds().Contains(p) {
			return c, true
		}
	}
	return nil, false
}

// Insets is the space axes take around a plot.
type Insets struct {
	Left, Top, Right, Bottom float64
}

// AxisMeasurer reports the space axes need inside a chart of the given size.
type AxisMeasurer interface {
	Measure(size geometry.Size) Insets
}

// AxisMeasurerFunc adapts a function to [AxisMeasurer].
type AxisMeasurerFunc func(size geometry.Size) Insets

func (f AxisMeasurerFunc) Measure(size geometry.Size) Insets { return f(size) }

type noAxes struct{}

func (noAxes) Measure(geometry.Size) Insets { return Insets{} }

// Option configures [Compute].
type Option func(*config)

type config struct {
	legend   legend.Renderer
	title    string
	entries  []legend.Entry
	position legend.Position
	axes     AxisMeasurer
}

// WithLegend reserves space for a legend at the requested position.
func WithLegend(r legend.Renderer, title string, entries []legend.Entry, pos legend.Position) Option {
	return func(c *config) {
		c.legend, c.title, c.entries, c.position = r, title, entries, pos
	}
}

// WithAxes sets the measurer used to inset every plot area.
func WithAxes(m AxisMeasurer) Option {
	return func(c *config) {
		if m != nil {
			c.axes = m
		}
	}
}

// Active reports whether small multiples are in effect for the grid size.
func Active(rows, columns int) bool { return rows > 1 || columns > 1 }

// Compute arranges the cells of a rows x columns grid inside the container.
// Minimum sizes always win over fitted sizes; space that would go negative
// is clamped to zero.
func Compute(in Input, s settings.SmallMultiples, opts ...Option) Result {
	cfg := config{axes: noAxes{}, position: legend.None}
	for _, opt := range opts {
		opt(&cfg)
	}
	in.Container = in.Container.Clamp()
	if in.Occupied == nil {
		in.Occupied = func(int, int) bool { return true }
	}

	res := Result{
		Active:         Active(in.Rows, in.Columns),
		Mode:           s.Mode,
		Container:      in.Container,
		LegendPosition: legend.None,
	}

	if !res.Active {
		if cfg.legend != nil {
			lr := ResolveLegend(cfg.position, in.Container, cfg.legend, cfg.title, cfg.entries, cfg.axes)
			res.LegendPosition, res.LegendMargin, res.LegendSteps = lr.Position, lr.Margin, lr.Steps
		}
		res.Origin = legendOrigin(res.LegendPosition, res.LegendMargin)
		area := available(in.Container, res.LegendPosition, res.LegendMargin)
		cell := Cell{
			Key:    chart.CellKey(0, 0),
			X:      res.Origin.X,
			Y:      res.Origin.Y,
			Width:  area.Width,
			Height: area.Height,
			Empty:  in.Rows == 0 || in.Columns == 0 || !in.Occupied(0, 0),
		}
		cell.Plot = plotRect(cell, cfg.axes)
		res.Cells = []Cell{cell}
		res.PerRow, res.VisualRows = 1, 1
		res.Canvas = in.Container
		return res
	}

	if cfg.legend != nil && cfg.position != legend.None {
		res.LegendPosition = cfg.position
		res.LegendMargin = cfg.legend.Render(cfg.title, cfg.entries, cfg.position, in.Container)
	}
	res.Origin = legendOrigin(res.LegendPosition, res.LegendMargin)
	area := available(in.Container, res.LegendPosition, res.LegendMargin)

	var grid geometry.Size
	if s.Mode == settings.ModeMatrix {
		res.Cells, grid = matrix(in, s, area)
		if len(res.Cells) > 0 {
			res.PerRow, res.VisualRows = in.Columns, in.Rows
			res.TitleBand = titleBand(s)
		}
	} else {
		res.Cells, grid, res.PerRow, res.VisualRows = flow(in, s, area)
	}
	for i := range res.Cells {
		c := &res.Cells[i]
		c.X += res.Origin.X
		c.Y += res.Origin.Y
		c.Plot = plotRect(*c, cfg.axes)
	}
	res.Scroll = grid.Width > area.Width || grid.Height > area.Height
	res.Canvas = geometry.Size{
		Width:  max(in.Container.Width, grid.Width+horizontalCost(res.LegendPosition, res.LegendMargin)),
		Height: max(in.Container.Height, grid.Height+verticalCost(res.LegendPosition, res.LegendMargin)),
	}
	return res
}

func separator(s settings.SmallMultiples) float64 {
	if s.ShowSeparators {
		return s.SeparatorWidth
	}
	return 0
}

func titleBand(s settings.SmallMultiples) float64 {
	if s.ShowChartTitle {
		return s.TitleSize
	}
	return 0
}

// matrix lays out a fixed rows x columns grid. Row titles take a band on the
// left, column titles a band on top.
func matrix(in Input, s settings.SmallMultiples, area geometry.Size) ([]Cell, geometry.Size) {
	if in.Rows <= 0 || in.Columns <= 0 {
		return nil, geometry.Size{}
	}
	sep := separator(s)
	band := titleBand(s)

	w := max((area.Width-band)/float64(in.Columns)-sep, s.MinUnitWidth, 0)
	h := max((area.Height-band)/float64(in.Rows)-sep, s.MinUnitHeight, 0)

	cells := make([]Cell, 0, in.Rows*in.Columns)
	for r := 0; r < in.Rows; r++ {
		for c := 0; c < in.Columns; c++ {
			cells = append(cells, Cell{
				Row:    r,
				Column: c,
				Key:    chart.CellKey(r, c),
				Slot:   len(cells),
				X:      band + float64(c)*(w+sep),
				Y:      band + float64(r)*(h+sep),
				Width:  w,
				Height: h,
				Empty:  !in.Occupied(r, c),
			})
		}
	}
	grid := geometry.Size{
		Width:  band + float64(in.Columns)*w + float64(in.Columns-1)*sep,
		Height: band + float64(in.Rows)*h + float64(in.Rows-1)*sep,
	}
	return cells, grid
}

// flow wraps cells left to right. Without ShowEmptySmallMultiples empty cells
// are dropped and the remaining ones packed into consecutive slots in
// row-major order. Visual rows holding only empty cells collapse to their
// title band.
func flow(in Input, s settings.SmallMultiples, area geometry.Size) ([]Cell, geometry.Size, int, int) {
	if in.Rows <= 0 || in.Columns <= 0 {
		return nil, geometry.Size{}, 0, 0
	}
	sep := separator(s)
	band := titleBand(s)

	var cells []Cell
	for r := 0; r < in.Rows; r++ {
		for c := 0; c < in.Columns; c++ {
			empty := !in.Occupied(r, c)
			if empty && !s.ShowEmptySmallMultiples {
				continue
			}
			cells = append(cells, Cell{Row: r, Column: c, Key: chart.CellKey(r, c), Empty: empty})
		}
	}
	if len(cells) == 0 {
		return nil, geometry.Size{}, 0, 0
	}

	perRow := len(cells)
	if unit := s.MinUnitWidth + sep; unit > 0 {
		perRow = int(math.Floor((area.Width + sep) / unit))
	}
	perRow = min(max(perRow, s.MinColumnsPerRow, 1), len(cells))
	rows := (len(cells) + perRow - 1) / perRow

	w := max((area.Width-float64(perRow-1)*sep)/float64(perRow), s.MinUnitWidth, 0)
	h := max((area.Height-float64(rows-1)*sep)/float64(rows), s.MinUnitHeight, band, 0)

	rowHeights := make([]float64, rows)
	for vr := range rowHeights {
		rowHeights[vr] = band
		for i := vr * perRow; i < min((vr+1)*perRow, len(cells)); i++ {
			if !cells[i].Empty {
				rowHeights[vr] = h
				break
			}
		}
	}

	y := 0.0
	for vr := 0; vr < rows; vr++ {
		for i := vr * perRow; i < min((vr+1)*perRow, len(cells)); i++ {
			c := &cells[i]
			c.Slot = i
			c.X = float64(i%perRow) * (w + sep)
			c.Y = y
			c.Width = w
			c.Height = rowHeights[vr]
			c.TitleHeight = min(band, c.Height)
		}
		y += rowHeights[vr] + sep
	}

	grid := geometry.Size{
		Width:  float64(perRow)*w + float64(perRow-1)*sep,
		Height: y - sep,
	}
	return cells, grid, perRow, rows
}

// plotRect returns the cell-local plot rectangle below the title band and
// inside the axes.
func plotRect(c Cell, axes AxisMeasurer) geometry.Rect {
	body := geometry.Rect{Top: c.TitleHeight, Right: c.Width, Bottom: max(c.Height, c.TitleHeight)}
	if c.Empty {
		return body
	}
	in := axes.Measure(body.Size())
	return body.Inset(in.Left, in.Top, in.Right, in.Bottom)
}

func legendOrigin(pos legend.Position, m legend.Margin) geometry.Point {
	switch pos {
	case legend.Top, legend.TopCenter:
		return geometry.Point{Y: m.Height}
	case legend.Left, legend.LeftCenter:
		return geometry.Point{X: m.Width}
	default:
		return geometry.Point{}
	}
}

func horizontalCost(pos legend.Position, m legend.Margin) float64 {
	if pos.IsVertical() {
		return m.Width
	}
	return 0
}

func verticalCost(pos legend.Position, m legend.Margin) float64 {
	if pos.IsHorizontal() {
		return m.Height
	}
	return 0
}

// available returns the container minus the legend margin, clamped at zero.
func available(container geometry.Size, pos legend.Position, m legend.Margin) geometry.Size {
	return geometry.Size{
		Width:  container.Width - horizontalCost(pos, m),
		Height: container.Height - verticalCost(pos, m),
	}.Clamp()
}
