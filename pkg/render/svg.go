package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/linevis/pkg/behavior"
	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/fonts"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/layout"
	"github.com/matzehuels/linevis/pkg/legend"
	"github.com/matzehuels/linevis/pkg/selection"
	"github.com/matzehuels/linevis/pkg/settings"
)

const (
	axisColor      = "#605E5C"
	gridColor      = "#E1DFDD"
	separatorColor = "#C8C6C4"
)

const baseCSS = `
    text { font-family: %s; fill: #605E5C; }
    .cell-title { fill: #252423; font-weight: 600; }
    .line { transition: opacity 0.15s ease; }
    .line path.stroke { fill: none; stroke-linejoin: round; stroke-linecap: round; }
    .legend-item text { fill: #252423; }
    .lasso-rect { fill: rgba(0, 120, 212, 0.1); stroke: #0078D4; stroke-dasharray: 4 2; }
    .lasso-segment { fill: none; stroke-linecap: round; }`

const interactionCSS = `
    .line, .legend-item { cursor: pointer; }
    .plot-area { cursor: crosshair; }`

// interactionJS forwards pointer events as "linevis" DOM events carrying
// visual coordinates. The host maps them onto the Visual's entry points.
const interactionJS = `
    (() => {
      const svg = document.currentScript ? document.currentScript.closest('svg') : document.querySelector('svg');
      const emit = (kind, detail) => svg.dispatchEvent(new CustomEvent('linevis', {bubbles: true, detail: Object.assign({kind: kind}, detail)}));
      const at = e => { const p = svg.createSVGPoint(); p.x = e.clientX; p.y = e.clientY; const q = p.matrixTransform(svg.getScreenCTM().inverse()); return {x: q.x, y: q.y}; };
      svg.querySelectorAll('.line').forEach(el => el.addEventListener('click', e => {
        e.stopPropagation();
        emit('line', {key: el.dataset.key, multi: e.ctrlKey || e.metaKey});
      }));
      svg.querySelectorAll('.legend-item').forEach(el => el.addEventListener('click', e => {
        e.stopPropagation();
        emit('legend', {label: el.dataset.label, multi: e.ctrlKey || e.metaKey});
      }));
      const bg = svg.querySelector('.legend-background');
      if (bg) bg.addEventListener('click', () => emit('legend-background', {}));
      svg.querySelectorAll('.plot-area').forEach(el => el.addEventListener('mousedown', e => emit('mousedown', at(e))));
      svg.addEventListener('mousemove', e => { if (e.buttons & 1) emit('mousemove', at(e)); });
      svg.addEventListener('mouseup', e => emit('mouseup', at(e)));
    })();`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	settings    *settings.Settings
	opacity     selection.Opacities
	icons       map[string]behavior.Icon
	overlay     *behavior.Overlay
	popups      bool
	dataLabels  bool
	interaction bool
}

// WithSettings sets the formatting settings. The default is [settings.Default].
func WithSettings(s *settings.Settings) SVGOption {
	return func(r *svgRenderer) {
		if s != nil {
			r.settings = s
		}
	}
}

// WithOpacity applies per-line and per-marker opacities.
func WithOpacity(o selection.Opacities) SVGOption { return func(r *svgRenderer) { r.opacity = o } }

// WithLegendIcons recolors legend icons.
func WithLegendIcons(icons []behavior.Icon) SVGOption {
	return func(r *svgRenderer) {
		r.icons = make(map[string]behavior.Icon, len(icons))
		for _, ic := range icons {
			r.icons[ic.Label] = ic
		}
	}
}

// WithOverlay draws a lasso preview.
func WithOverlay(o *behavior.Overlay) SVGOption { return func(r *svgRenderer) { r.overlay = o } }

// WithPopups embeds hover tooltips built from the geometry index.
func WithPopups() SVGOption { return func(r *svgRenderer) { r.popups = true } }

// WithDataLabels draws the value above every point.
func WithDataLabels() SVGOption { return func(r *svgRenderer) { r.dataLabels = true } }

// WithInteraction embeds the script that forwards clicks and drags.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interaction = true } }

// LegendMeasurer returns the legend measurer matching the settings. The
// same measurer must be handed to the layout engine so that the reserved
// margin matches what gets drawn.
func LegendMeasurer(s *settings.Settings) *legend.Measurer {
	m := legend.NewMeasurer(s.Legend.Icon)
	if s.Legend.FontSize > 0 {
		m.FontSize = s.Legend.FontSize
	}
	return m
}

// RenderSVG draws the model into the computed layout and returns the
// document together with the geometry index built in the same pass.
func RenderSVG(m *chart.Model, res layout.Result, opts ...SVGOption) ([]byte, *geometry.Index) {
	r := svgRenderer{settings: settings.Default()}
	for _, opt := range opts {
		opt(&r)
	}
	s := r.settings
	idx := geometry.NewIndex()

	w, h := res.Canvas.Width, res.Canvas.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	if m.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(m.Title))
	}
	fmt.Fprintf(&buf, "  <style>"+baseCSS+"\n  </style>\n", fonts.FallbackFontFamily)
	fmt.Fprintf(&buf, `  <rect class="background" width="%.1f" height="%.1f" fill="#FFFFFF"/>`+"\n", w, h)

	r.renderLegend(&buf, m, res)
	r.renderSeparators(&buf, res)
	r.renderMatrixTitles(&buf, m, res)
	for _, c := range res.Cells {
		if e := r.renderCell(&buf, m, c); e != nil {
			idx.Add(e)
		}
	}
	r.renderOverlay(&buf)

	if r.popups && s.Tooltips.Show {
		renderPopupScript(&buf)
	}
	if r.interaction {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes(), idx
}

func (r *svgRenderer) renderLegend(buf *bytes.Buffer, m *chart.Model, res layout.Result) {
	if res.LegendPosition == legend.None {
		return
	}
	s := r.settings
	meas := LegendMeasurer(s)
	pl := meas.Layout(s.LegendTitle(), legend.EntriesFor(m), res.LegendPosition, res.Container)
	if pl.Position == legend.None {
		return
	}
	o := pl.Origin(res.Canvas)
	fmt.Fprintf(buf, `  <g class="legend" transform="translate(%.1f,%.1f)">`+"\n", o.X, o.Y)
	fmt.Fprintf(buf, `    <rect class="legend-background" width="%.1f" height="%.1f" fill="transparent"/>`+"\n",
		pl.Margin.Width, pl.Margin.Height)
	if pl.Title != "" {
		fmt.Fprintf(buf, `    <text class="legend-title" x="%.1f" y="%.1f" font-size="%.1f" font-weight="600" dominant-baseline="central">%s</text>`+"\n",
			pl.TitleAt.X, pl.TitleAt.Y, meas.FontSize, escapeXML(pl.Title))
	}
	iconSize := meas.IconSize
	for _, it := range pl.Items {
		color, opacity := it.Entry.Color, selection.DefaultOpacity
		if ic, ok := r.icons[it.Entry.Label]; ok {
			color, opacity = ic.Color, ic.Opacity
		}
		fmt.Fprintf(buf, `    <g class="legend-item" data-label="%s" opacity="%s">`+"\n", escapeXML(it.Entry.Label), num(opacity))
		if it.Entry.Tooltip != "" {
			fmt.Fprintf(buf, "      <title>%s</title>\n", escapeXML(it.Entry.Tooltip))
		}
		if meas.Icon.Stroked() {
			fmt.Fprintf(buf, `      <path d="%s" stroke="%s" stroke-width="2" fill="none"/>`+"\n",
				meas.Icon.Path(it.Icon.X, it.Icon.Y, iconSize), color)
		} else {
			fmt.Fprintf(buf, `      <path d="%s" fill="%s"/>`+"\n", meas.Icon.Path(it.Icon.X, it.Icon.Y, iconSize), color)
		}
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" font-size="%.1f" dominant-baseline="central">%s</text>`+"\n",
			it.Text.X, it.Text.Y, meas.FontSize, escapeXML(it.Label))
		buf.WriteString("    </g>\n")
	}
	buf.WriteString("  </g>\n")
}

// renderSeparators draws a rule in the middle of each gutter between
// neighbouring cells.
func (r *svgRenderer) renderSeparators(buf *bytes.Buffer, res layout.Result) {
	sm := r.settings.SmallMultiples
	if !res.Active || !sm.ShowSeparators || sm.SeparatorWidth <= 0 {
		return
	}
	half := sm.SeparatorWidth / 2
	for i, c := range res.Cells {
		right, below := false, false
		for j, o := range res.Cells {
			if i == j {
				continue
			}
			if o.Y == c.Y && o.X > c.X {
				right = true
			}
			if o.Y > c.Y {
				below = true
			}
		}
		if right {
			x := c.X + c.Width + half
			fmt.Fprintf(buf, `  <line class="separator" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
				x, c.Y, x, c.Y+c.Height, separatorColor)
		}
		if below {
			y := c.Y + c.Height + half
			fmt.Fprintf(buf, `  <line class="separator" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
				c.X, y, c.X+c.Width, y, separatorColor)
		}
	}
}

// renderMatrixTitles writes the row keys into the band left of the first
// column and the column keys into the band above the first row.
func (r *svgRenderer) renderMatrixTitles(buf *bytes.Buffer, m *chart.Model, res layout.Result) {
	band := res.TitleBand
	if !res.Active || res.Mode != settings.ModeMatrix || band <= 0 {
		return
	}
	size := r.settings.SmallMultiples.FontSize
	for _, c := range res.Cells {
		if c.Column == 0 && c.Row < len(m.RowKeys) && m.RowKeys[c.Row] != "" {
			x, y := c.X-band/2, c.Y+c.Height/2
			fmt.Fprintf(buf, `  <text class="cell-title row-title" data-row="%d" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="central" transform="rotate(-90 %.1f %.1f)">%s</text>`+"\n",
				c.Row, x, y, size, x, y, escapeXML(fonts.Truncate(m.RowKeys[c.Row], size, c.Height)))
		}
		if c.Row == 0 && c.Column < len(m.ColumnKeys) && m.ColumnKeys[c.Column] != "" {
			fmt.Fprintf(buf, `  <text class="cell-title column-title" data-column="%d" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
				c.Column, c.X+c.Width/2, c.Y-band/2, size, escapeXML(fonts.Truncate(m.ColumnKeys[c.Column], size, c.Width)))
		}
	}
}

func cellTitle(m *chart.Model, c layout.Cell) string {
	var parts []string
	if c.Row < len(m.RowKeys) && m.RowKeys[c.Row] != "" {
		parts = append(parts, m.RowKeys[c.Row])
	}
	if c.Column < len(m.ColumnKeys) && m.ColumnKeys[c.Column] != "" {
		parts = append(parts, m.ColumnKeys[c.Column])
	}
	return strings.Join(parts, ", ")
}

func (r *svgRenderer) cellSeries(m *chart.Model, c layout.Cell) []*chart.Series {
	idx := m.CellSeries(c.Row, c.Column)
	out := make([]*chart.Series, 0, len(idx))
	for _, i := range idx {
		out = append(out, m.Series[i])
	}
	return out
}

func (r *svgRenderer) renderCell(buf *bytes.Buffer, m *chart.Model, c layout.Cell) *geometry.Entry {
	s := r.settings
	fmt.Fprintf(buf, `  <g class="cell" data-cell="%s" transform="translate(%.1f,%.1f)">`+"\n", c.Key, c.X, c.Y)
	defer buf.WriteString("  </g>\n")

	if c.TitleHeight > 0 {
		title := fonts.Truncate(cellTitle(m, c), s.SmallMultiples.FontSize, c.Width)
		fmt.Fprintf(buf, `    <text class="cell-title" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			c.Width/2, c.TitleHeight/2, s.SmallMultiples.FontSize, escapeXML(title))
	}
	if c.Empty || c.Plot.Degenerate() {
		return nil
	}

	series := r.cellSeries(m, c)
	ys := newValueAxis(m, s.Axes, c.Plot)
	xs := newCategoryAxis(m, c.Plot)
	e := geometry.Build(c.Key, c.Offset(), c.Plot, series, xs.X, ys.Y)

	r.renderAxes(buf, m, c.Plot, xs, ys)
	fmt.Fprintf(buf, `    <rect class="plot-area" data-cell="%s" data-slices="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="transparent"/>`+"\n",
		c.Key, sliceXs(e), c.Plot.Left, c.Plot.Top, c.Plot.Width(), c.Plot.Height())
	for _, sr := range series {
		r.renderLine(buf, sr, xs, ys)
	}
	if r.popups && s.Tooltips.Show {
		renderPopups(buf, e, s.Axes.FontSize)
	}
	return e
}

func (r *svgRenderer) renderAxes(buf *bytes.Buffer, m *chart.Model, plot geometry.Rect, xs categoryAxis, ys valueAxis) {
	a := r.settings.Axes
	for _, t := range ys.ticks {
		y := ys.Y(t)
		if a.ShowGridlines {
			fmt.Fprintf(buf, `    <line class="gridline" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
				plot.Left, y, plot.Right, y, gridColor)
		}
		if a.ShowY {
			fmt.Fprintf(buf, `    <text class="tick y" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="end" dominant-baseline="central">%s</text>`+"\n",
				plot.Left-tickGap/2, y, a.FontSize, TickLabel(t))
		}
	}
	if !a.ShowX {
		return
	}
	fmt.Fprintf(buf, `    <line class="axis x" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
		plot.Left, plot.Bottom, plot.Right, plot.Bottom, axisColor)
	step := xs.labelStep(a.FontSize)
	labelY := plot.Bottom + fonts.LineHeight(a.FontSize)/2 + tickGap/2
	for i, cat := range m.Categories {
		if i%step != 0 {
			continue
		}
		fmt.Fprintf(buf, `    <text class="tick x" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
			xs.X(cat), labelY, a.FontSize, escapeXML(cat.String()))
	}
}

// linePath returns the path data through pts, straight or stepped.
func linePath(pts []geometry.Point, stepped bool) string {
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M%.1f,%.1f", pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		if stepped {
			fmt.Fprintf(&b, " H%.1f V%.1f", p.X, p.Y)
		} else {
			fmt.Fprintf(&b, " L%.1f,%.1f", p.X, p.Y)
		}
	}
	return b.String()
}

func (r *svgRenderer) renderLine(buf *bytes.Buffer, sr *chart.Series, xs categoryAxis, ys valueAxis) {
	f := sr.Format
	pts := make([]geometry.Point, len(sr.Points))
	for i, p := range sr.Points {
		pts[i] = geometry.Point{X: xs.X(p.Category), Y: ys.Y(p.Value)}
	}

	fmt.Fprintf(buf, `    <g class="line" data-key="%s" opacity="%s">`+"\n", escapeXML(sr.Key), num(r.opacity.Line(sr.Key)))
	if len(pts) > 1 {
		dash := ""
		if d := f.Style.DashArray(f.StrokeWidth); d != "" {
			dash = fmt.Sprintf(` stroke-dasharray="%s"`, d)
		}
		fmt.Fprintf(buf, `      <path class="stroke" d="%s" stroke="%s" stroke-width="%s"%s/>`+"\n",
			linePath(pts, f.Stepped), f.Color, num(f.StrokeWidth), dash)
	}

	markers := f.ShowMarkers || len(pts) == 1
	for i, p := range sr.Points {
		if markers {
			d := f.Marker.Path(pts[i].X, pts[i].Y, f.MarkerSize)
			op := num(r.opacity.Point(p.Identity))
			if f.Marker.Filled() {
				fmt.Fprintf(buf, `      <path class="marker" d="%s" fill="%s" opacity="%s"/>`+"\n", d, f.Color, op)
			} else {
				fmt.Fprintf(buf, `      <path class="marker" d="%s" stroke="%s" stroke-width="2" fill="none" opacity="%s"/>`+"\n", d, f.Color, op)
			}
		}
		if r.dataLabels {
			size := r.settings.Labels.FontSize
			fmt.Fprintf(buf, `      <text class="data-label" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
				pts[i].X, pts[i].Y-f.Marker.Extent(f.MarkerSize)-2, size,
				strconv.FormatFloat(p.Value, 'f', r.settings.Labels.Precision, 64))
		}
	}
	buf.WriteString("    </g>\n")
}

func (r *svgRenderer) renderOverlay(buf *bytes.Buffer) {
	o := r.overlay
	if o == nil {
		return
	}
	fmt.Fprintf(buf, `  <g class="lasso" data-cell="%s" transform="translate(%.1f,%.1f)" pointer-events="none">`+"\n",
		o.CellKey, o.Offset.X, o.Offset.Y)
	for _, seg := range o.Segments {
		fmt.Fprintf(buf, `    <path class="lasso-segment" data-key="%s" d="M%.1f,%.1f L%.1f,%.1f" stroke="%s" stroke-width="4"/>`+"\n",
			escapeXML(seg.Key), seg.From.X, seg.From.Y, seg.To.X, seg.To.Y, seg.Color)
	}
	if o.ShowRect {
		fmt.Fprintf(buf, `    <rect class="lasso-rect" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
			o.Rect.Left, o.Rect.Top, o.Rect.Width(), o.Rect.Height())
	}
	buf.WriteString("  </g>\n")
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
