package render

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/linevis/pkg/behavior"
	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/errors"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/layout"
	"github.com/matzehuels/linevis/pkg/legend"
	"github.com/matzehuels/linevis/pkg/selection"
	"github.com/matzehuels/linevis/pkg/settings"
)

func sample(t *testing.T) (*chart.Model, layout.Result, *settings.Settings) {
	t.Helper()
	var records []chart.Record
	for _, row := range []string{"East", "West"} {
		for i, v := range []float64{3, 7, 5} {
			records = append(records,
				chart.Record{Category: chart.Number(float64(2020 + i)), Series: "Sales", Row: row, Value: v},
				chart.Record{Category: chart.Number(float64(2020 + i)), Series: "Costs", Row: row, Value: v - 2},
			)
		}
	}
	s := settings.Default()
	m, err := chart.Build(chart.Table{Title: "Sales & Costs", Records: records}, s.FormatFunc())
	if err != nil {
		t.Fatal(err)
	}
	res := layout.Compute(
		layout.Input{Container: geometry.Size{Width: 800, Height: 500}, Rows: m.Rows(), Columns: m.Columns(), Occupied: m.Occupied},
		s.SmallMultiples,
		layout.WithLegend(LegendMeasurer(s), s.LegendTitle(), legend.EntriesFor(m), s.LegendPosition()),
		layout.WithAxes(MeasureAxes(m, s.Axes)),
	)
	return m, res, s
}

func TestRenderSVG(t *testing.T) {
	m, res, s := sample(t)
	svg, idx := RenderSVG(m, res, WithSettings(s))
	out := string(svg)

	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>\n") {
		t.Fatal("output is not a complete svg document")
	}
	if got := strings.Count(out, `class="cell"`); got != len(res.Cells) {
		t.Errorf("cells = %d, want %d", got, len(res.Cells))
	}
	if idx.Len() != len(res.Cells) {
		t.Errorf("index entries = %d, want %d", idx.Len(), len(res.Cells))
	}
	for _, key := range []string{"0_0_Sales", "1_0_Costs"} {
		if !strings.Contains(out, `data-key="`+key+`"`) {
			t.Errorf("missing line %s", key)
		}
	}
	if !strings.Contains(out, "Sales &amp; Costs") {
		t.Error("title should be escaped")
	}
	if !strings.Contains(out, `class="legend-item" data-label="Sales"`) {
		t.Error("legend items missing")
	}
	if strings.Contains(out, "<script") {
		t.Error("no script expected without popups or interaction")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	m, res, s := sample(t)
	state := selection.NewState()
	state.SetLabels([]string{"Sales"})

	overlay := &behavior.Overlay{CellKey: "0_0_", ShowRect: true, Rect: geometry.Rect{Right: 10, Bottom: 10}}
	svg, _ := RenderSVG(m, res,
		WithSettings(s),
		WithOpacity(state.Opacities(m)),
		WithLegendIcons([]behavior.Icon{{Label: "Costs", Color: behavior.DimmedIconColor, Opacity: 0.4}}),
		WithOverlay(overlay),
		WithPopups(),
		WithDataLabels(),
		WithInteraction(),
	)
	out := string(svg)

	if !strings.Contains(out, `data-key="0_0_Costs" opacity="0.4"`) {
		t.Error("unselected line should be dimmed")
	}
	if !strings.Contains(out, `data-key="0_0_Sales" opacity="1"`) {
		t.Error("selected line should be opaque")
	}
	if !strings.Contains(out, behavior.DimmedIconColor) {
		t.Error("legend icon should be recolored")
	}
	for _, want := range []string{`class="lasso-rect"`, `class="popup"`, `class="data-label"`, "CustomEvent('linevis'"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestRenderMatrixTitles(t *testing.T) {
	var records []chart.Record
	for _, row := range []string{"East", "West"} {
		for _, col := range []string{"A", "B"} {
			for i, v := range []float64{3, 7} {
				records = append(records, chart.Record{
					Category: chart.Number(float64(2020 + i)), Series: "Sales", Row: row, Column: col, Value: v,
				})
			}
		}
	}

	tests := []struct {
		name   string
		mode   settings.Mode
		titles bool
		want   bool
	}{
		{"matrix with titles", settings.ModeMatrix, true, true},
		{"matrix without titles", settings.ModeMatrix, false, false},
		{"flow", settings.ModeFlow, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings.Default()
			s.SmallMultiples.Mode = tt.mode
			s.SmallMultiples.ShowChartTitle = tt.titles
			m, err := chart.Build(chart.Table{Records: records}, s.FormatFunc())
			if err != nil {
				t.Fatal(err)
			}
			res := layout.Compute(
				layout.Input{Container: geometry.Size{Width: 900, Height: 600}, Rows: m.Rows(), Columns: m.Columns(), Occupied: m.Occupied},
				s.SmallMultiples,
			)
			svg, _ := RenderSVG(m, res, WithSettings(s))
			out := string(svg)

			if got := strings.Count(out, `class="cell-title row-title"`); got != boolCount(tt.want, 2) {
				t.Errorf("row titles = %d", got)
			}
			if got := strings.Count(out, `class="cell-title column-title"`); got != boolCount(tt.want, 2) {
				t.Errorf("column titles = %d", got)
			}
			if !tt.want {
				return
			}
			for _, want := range []string{">East<", ">West<", ">A<", ">B<"} {
				if !strings.Contains(out, want) {
					t.Errorf("svg missing header %s", want)
				}
			}
			first := res.Cells[0]
			if want := `data-column="0" x="` + num1(first.X+first.Width/2) + `" y="` + num1(first.Y-res.TitleBand/2) + `"`; !strings.Contains(out, want) {
				t.Errorf("column header not centred in the top band: want %s", want)
			}
		})
	}
}

func boolCount(b bool, n int) int {
	if b {
		return n
	}
	return 0
}

func num1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func TestRenderJSON(t *testing.T) {
	m, res, s := sample(t)
	_, idx := RenderSVG(m, res, WithSettings(s))
	data, err := RenderJSON(m, res, idx)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Series   []map[string]any `json:"series"`
		Geometry []map[string]any `json:"geometry"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Series) != len(m.Series) || len(out.Geometry) != idx.Len() {
		t.Errorf("series = %d, geometry = %d", len(out.Series), len(out.Geometry))
	}
}

func TestValueScale(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi float64
	}{
		{"range", 3, 97},
		{"flat", 5, 5},
		{"negative", -40, -2},
		{"swapped", 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls, ticks := ValueScale(tt.lo, tt.hi, 6)
			lo, hi := min(tt.lo, tt.hi), max(tt.lo, tt.hi)
			if ls.Min > lo || ls.Max < hi {
				t.Errorf("scale [%v, %v] does not cover [%v, %v]", ls.Min, ls.Max, lo, hi)
			}
			if len(ticks) == 0 || len(ticks) > 6 {
				t.Errorf("ticks = %v", ticks)
			}
			if ls.Map(ls.Min) >= ls.Map(ls.Max) {
				t.Error("scale should be increasing")
			}
		})
	}
}

func TestLinePath(t *testing.T) {
	pts := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 5}}
	if got := linePath(pts, false); got != "M0.0,0.0 L10.0,5.0" {
		t.Errorf("straight = %q", got)
	}
	if got := linePath(pts, true); got != "M0.0,0.0 H10.0 V5.0" {
		t.Errorf("stepped = %q", got)
	}
	if linePath(nil, false) != "" {
		t.Error("empty path expected")
	}
}

func TestMeasureAxes(t *testing.T) {
	m, _, s := sample(t)
	in := MeasureAxes(m, s.Axes).Measure(geometry.Size{Width: 300, Height: 200})
	if in.Left <= 0 || in.Bottom <= 0 {
		t.Errorf("insets = %+v", in)
	}
	s.Axes.ShowX, s.Axes.ShowY = false, false
	in = MeasureAxes(m, s.Axes).Measure(geometry.Size{Width: 300, Height: 200})
	if in.Left != 0 || in.Bottom != 0 {
		t.Errorf("hidden axes insets = %+v", in)
	}
}

func TestConvertWithoutRasterizer(t *testing.T) {
	prev := RSVGConvert
	t.Cleanup(func() { RSVGConvert = prev })
	RSVGConvert = "linevis-missing-rasterizer"

	ctx := context.Background()
	if _, err := ToPNG(ctx, []byte("<svg/>"), 2); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG err = %v, want UNSUPPORTED", err)
	}
	if _, err := ToPDF(ctx, []byte("<svg/>")); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF err = %v, want UNSUPPORTED", err)
	}
}
