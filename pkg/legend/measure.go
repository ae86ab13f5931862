package legend

import (
	"github.com/matzehuels/linevis/pkg/fonts"
	"github.com/matzehuels/linevis/pkg/geometry"
)

const (
	defaultFontSize = 12.0
	defaultIconSize = 10.0
	iconGap         = 5.0
	itemSpacing     = 14.0
	boxPadding      = 4.0

	// maxVerticalShare caps the width of a Left/Right legend.
	maxVerticalShare = 0.3
)

// Item is one placed legend entry. Coordinates are relative to the legend box.
type Item struct {
	Entry  Entry
	Label  string // possibly truncated
	Icon   geometry.Point
	Text   geometry.Point
	Bounds geometry.Rect
}

// Placement is a complete legend layout.
type Placement struct {
	Position Position
	Margin   Margin
	Title    string
	TitleAt  geometry.Point
	Items    []Item
}

// Origin returns the top-left corner of the legend box inside a visual of
// the given size.
func (p Placement) Origin(viewport geometry.Size) geometry.Point {
	switch p.Position {
	case Bottom, BottomCenter:
		return geometry.Point{Y: max(viewport.Height-p.Margin.Height, 0)}
	case Right, RightCenter:
		return geometry.Point{X: max(viewport.Width-p.Margin.Width, 0)}
	default:
		return geometry.Point{}
	}
}

// Measurer lays legends out using estimated text metrics. It implements
// [Renderer] and is also what the SVG sink draws from, so the margin
// reserved during layout matches what gets drawn.
type Measurer struct {
	FontSize float64
	IconSize float64
	Icon     IconShape
}

// NewMeasurer returns a Measurer with the default font and icon sizes.
func NewMeasurer(icon IconShape) *Measurer {
	return &Measurer{FontSize: defaultFontSize, IconSize: defaultIconSize, Icon: icon}
}

// Ensure Measurer implements Renderer.
var _ Renderer = (*Measurer)(nil)

// Render implements [Renderer].
func (m *Measurer) Render(title string, entries []Entry, pos Position, viewport geometry.Size) Margin {
	return m.Layout(title, entries, pos, viewport).Margin
}

// Layout places title and entries for the requested position.
func (m *Measurer) Layout(title string, entries []Entry, pos Position, viewport geometry.Size) Placement {
	viewport = viewport.Clamp()
	if pos == None || len(entries) == 0 || viewport.Width == 0 || viewport.Height == 0 {
		return Placement{Position: None}
	}
	if pos.IsVertical() {
		return m.layoutVertical(title, entries, pos, viewport)
	}
	return m.layoutHorizontal(title, entries, pos, viewport)
}

func (m *Measurer) fontSize() float64 {
	if m.FontSize > 0 {
		return m.FontSize
	}
	return defaultFontSize
}

func (m *Measurer) iconSize() float64 {
	if m.IconSize > 0 {
		return m.IconSize
	}
	return defaultIconSize
}

func (m *Measurer) rowHeight() float64 {
	return max(fonts.LineHeight(m.fontSize()), m.iconSize())
}

func (m *Measurer) itemWidth(label string) float64 {
	return m.Icon.Width(m.iconSize()) + iconGap + fonts.TextWidth(label, m.fontSize())
}

func (m *Measurer) place(e Entry, label string, x, y float64) Item {
	rowH := m.rowHeight()
	cy := y + rowH/2
	textX := x + m.Icon.Width(m.iconSize()) + iconGap
	return Item{
		Entry:  e,
		Label:  label,
		Icon:   geometry.Point{X: x, Y: cy},
		Text:   geometry.Point{X: textX, Y: cy},
		Bounds: geometry.Rect{Left: x, Top: y, Right: textX + fonts.TextWidth(label, m.fontSize()), Bottom: y + rowH},
	}
}

func (m *Measurer) layoutHorizontal(title string, entries []Entry, pos Position, viewport geometry.Size) Placement {
	size := m.fontSize()
	rowH := m.rowHeight()
	avail := viewport.Width - 2*boxPadding
	p := Placement{Position: pos, Title: title}

	start := boxPadding
	if title != "" {
		p.TitleAt = geometry.Point{X: boxPadding, Y: boxPadding + rowH/2}
		start += fonts.TextWidth(title, size) + itemSpacing
	}

	type row struct {
		first, last int
		width       float64
	}
	var rows []row
	x, y := start, boxPadding
	cur := row{first: 0}
	for i, e := range entries {
		label := fonts.Truncate(e.Label, size, max(avail-m.Icon.Width(m.iconSize())-iconGap, 0))
		w := m.itemWidth(label)
		if x+w > boxPadding+avail && i > cur.first {
			cur.last = i
			cur.width = x - itemSpacing - start
			rows = append(rows, cur)
			cur = row{first: i}
			x = start
			y += rowH
		}
		p.Items = append(p.Items, m.place(e, label, x, y))
		x += w + itemSpacing
	}
	cur.last = len(entries)
	cur.width = x - itemSpacing - start
	rows = append(rows, cur)

	if pos.IsCentered() {
		for _, r := range rows {
			shift := max((boxPadding+avail-start-r.width)/2, 0)
			for i := r.first; i < r.last; i++ {
				translateItem(&p.Items[i], geometry.Point{X: shift})
			}
		}
	}

	p.Margin = Margin{
		Width:  viewport.Width,
		Height: min(float64(len(rows))*rowH+2*boxPadding, viewport.Height),
	}
	return p
}

func (m *Measurer) layoutVertical(title string, entries []Entry, pos Position, viewport geometry.Size) Placement {
	size := m.fontSize()
	rowH := m.rowHeight()
	maxW := viewport.Width * maxVerticalShare
	labelBudget := max(maxW-2*boxPadding-m.Icon.Width(m.iconSize())-iconGap, 0)
	p := Placement{Position: pos}

	y := boxPadding
	width := 0.0
	if title != "" {
		p.Title = fonts.Truncate(title, size, max(maxW-2*boxPadding, 0))
		p.TitleAt = geometry.Point{X: boxPadding, Y: y + rowH/2}
		width = fonts.TextWidth(p.Title, size)
		y += rowH
	}
	for _, e := range entries {
		label := fonts.Truncate(e.Label, size, labelBudget)
		width = max(width, m.itemWidth(label))
		p.Items = append(p.Items, m.place(e, label, boxPadding, y))
		y += rowH
	}

	if pos.IsCentered() {
		shift := max((viewport.Height-y-boxPadding)/2, 0)
		for i := range p.Items {
			translateItem(&p.Items[i], geometry.Point{Y: shift})
		}
		p.TitleAt.Y += shift
	}

	p.Margin = Margin{
		Width:  min(width+2*boxPadding, viewport.Width),
		Height: viewport.Height,
	}
	return p
}

// HitTest returns the index of the item containing p (legend-box
// coordinates), or -1 when p falls on the legend background.
func (p Placement) HitTest(pt geometry.Point) int {
	for i, it := range p.Items {
		if it.Bounds.Contains(pt) {
			return i
		}
	}
	return -1
}

func translateItem(it *Item, d geometry.Point) {
	it.Icon = it.Icon.Add(d)
	it.Text = it.Text.Add(d)
	it.Bounds = it.Bounds.Translate(d)
}
