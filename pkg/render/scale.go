package render

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/scale"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/fonts"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/layout"
	"github.com/matzehuels/linevis/pkg/settings"
)

const (
	tickGap      = 6.0
	plotPadRight = 8.0
	minTicks     = 2
)

// ValueScale returns a linear scale covering [lo, hi], widened to nice
// tick boundaries, and its major ticks. At most maxTicks ticks are returned.
func ValueScale(lo, hi float64, maxTicks int) (scale.Linear, []float64) {
	if math.IsNaN(lo) || math.IsInf(lo, 0) {
		lo = 0
	}
	if math.IsNaN(hi) || math.IsInf(hi, 0) {
		hi = lo
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	maxTicks = max(maxTicks, minTicks)

	ls := scale.Linear{Min: lo, Max: hi}
	o := scale.TickOptions{Max: maxTicks}
	ls.Nice(o)
	major, _ := ls.Ticks(o)
	return ls, major
}

// TickLabel formats a value axis tick.
func TickLabel(v float64) string {
	if v == 0 {
		return "0"
	}
	return fmt.Sprintf("%.6g", v)
}

// tickCount returns how many ticks fit a value axis of the given height.
func tickCount(a settings.Axes, height float64) int {
	lh := fonts.LineHeight(a.FontSize)
	n := minTicks
	if lh > 0 {
		n = int(height / (2 * lh))
	}
	if a.MaxTicks > 0 {
		n = min(n, a.MaxTicks)
	}
	return max(n, minTicks)
}

// MeasureAxes returns the axis cost used by the layout engine. It measures
// the widest value tick label for the ticks that fit the given plot height.
func MeasureAxes(m *chart.Model, a settings.Axes) layout.AxisMeasurer {
	return layout.AxisMeasurerFunc(func(size geometry.Size) layout.Insets {
		lh := fonts.LineHeight(a.FontSize)
		in := layout.Insets{Top: lh / 2, Right: plotPadRight}
		if a.ShowX {
			in.Bottom = lh + tickGap/2
		}
		if a.ShowY && m != nil {
			_, ticks := ValueScale(m.MinValue, m.MaxValue, tickCount(a, size.Height-in.Top-in.Bottom))
			var w float64
			for _, t := range ticks {
				w = max(w, fonts.TextWidth(TickLabel(t), a.FontSize))
			}
			in.Left = w + tickGap
		}
		return in
	})
}

// valueAxis maps values into a plot rectangle.
type valueAxis struct {
	plot  geometry.Rect
	scale scale.Linear
	ticks []float64
}

func newValueAxis(m *chart.Model, a settings.Axes, plot geometry.Rect) valueAxis {
	ls, ticks := ValueScale(m.MinValue, m.MaxValue, tickCount(a, plot.Height()))
	return valueAxis{plot: plot, scale: ls, ticks: ticks}
}

// Y returns the cell-local y of v.
func (v valueAxis) Y(value float64) float64 {
	return v.plot.Bottom - v.scale.Map(value)*v.plot.Height()
}

// categoryAxis maps categories into a plot rectangle. Continuous
// categories are spaced by value, text categories get equal bands.
type categoryAxis struct {
	plot       geometry.Rect
	model      *chart.Model
	continuous bool
	lo, hi     float64
}

func newCategoryAxis(m *chart.Model, plot geometry.Rect) categoryAxis {
	c := categoryAxis{plot: plot, model: m}
	if n := len(m.Categories); n > 1 && m.Categories[0].Continuous() {
		c.continuous = true
		c.lo, c.hi = m.Categories[0].Float(), m.Categories[n-1].Float()
	}
	return c
}

// X returns the cell-local x of category.
func (c categoryAxis) X(category chart.Category) float64 {
	if c.continuous && c.hi > c.lo {
		pad := c.band() / 2
		return c.plot.Left + pad + (category.Float()-c.lo)/(c.hi-c.lo)*(c.plot.Width()-2*pad)
	}
	i := max(c.model.CategoryIndex(category), 0)
	return c.plot.Left + (float64(i)+0.5)*c.band()
}

func (c categoryAxis) band() float64 {
	return c.plot.Width() / float64(max(len(c.model.Categories), 1))
}

// labelStep returns the stride between category labels that keeps them
// from overlapping.
func (c categoryAxis) labelStep(size float64) int {
	var widest float64
	for _, cat := range c.model.Categories {
		widest = max(widest, fonts.TextWidth(cat.String(), size)+tickGap)
	}
	band := c.band()
	if band <= 0 {
		return len(c.model.Categories) + 1
	}
	return max(int(math.Ceil(widest/band)), 1)
}
