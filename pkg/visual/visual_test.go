package visual

import (
	"bytes"
	"context"
	"testing"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/errors"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/selection"
)

var viewport = geometry.Size{Width: 800, Height: 500}

// regions has two row groups with two series each. No value sits on a
// nice tick boundary, so every point is strictly inside its plot.
func regions() chart.Table {
	t := chart.Table{Title: "Regions"}
	add := func(row, series string, values ...float64) {
		for i, v := range values {
			t.Records = append(t.Records, chart.Record{
				Category: chart.Number(float64(2020 + i)),
				Series:   series,
				Row:      row,
				Value:    v,
			})
		}
	}
	add("East", "Sales", 12, 17, 23)
	add("East", "Costs", 11, 13, 14)
	add("West", "Sales", 21, 19, 16)
	add("West", "Costs", 12, 14, 18)
	return t
}

func newVisual(t *testing.T, cfg Config) *Visual {
	t.Helper()
	v := New(cfg)
	t.Cleanup(v.Close)
	if err := v.Update(context.Background(), regions(), viewport); err != nil {
		t.Fatal(err)
	}
	return v
}

func firstEntry(t *testing.T, v *Visual) *geometry.Entry {
	t.Helper()
	entries := v.Index().Entries()
	if len(entries) == 0 {
		t.Fatal("index is empty")
	}
	return entries[0]
}

func TestUpdate(t *testing.T) {
	v := newVisual(t, Config{})
	if got := v.Index().Len(); got != 2 {
		t.Errorf("index entries = %d, want 2", got)
	}
	if !v.LayoutResult().Active {
		t.Error("two row groups should activate small multiples")
	}
	if len(v.Model().Series) != 4 {
		t.Errorf("series = %d, want 4", len(v.Model().Series))
	}
}

func TestUpdateErrors(t *testing.T) {
	v := New(Config{})
	defer v.Close()
	err := v.Update(context.Background(), regions(), geometry.Size{Width: -1, Height: 10})
	if !errors.Is(err, errors.ErrCodeInvalidViewport) {
		t.Errorf("err = %v, want invalid viewport", err)
	}

	bad := chart.Table{Records: []chart.Record{
		{Category: chart.Number(1), Value: 1},
		{Category: chart.Text("a"), Value: 2},
	}}
	if err := v.Update(context.Background(), bad, viewport); !errors.Is(err, errors.ErrCodeInvalidDataset) {
		t.Errorf("err = %v, want invalid dataset", err)
	}
	if v.Render() != nil {
		t.Error("Render before a successful update should be nil")
	}
}

func TestLassoWholeCell(t *testing.T) {
	v := newVisual(t, Config{})
	e := firstEntry(t, v)
	b := e.Bounds()

	if !v.MouseDown(geometry.Point{X: b.Right - 1, Y: b.Bottom - 1}) {
		t.Fatal("MouseDown inside the plot should start a lasso")
	}
	far := geometry.Point{X: -1000, Y: -1000}
	v.MouseMove(far)
	v.MouseUp(far)

	snap := v.Snapshot()
	if snap.Driver != "lasso" || snap.Lasso != "idle" {
		t.Errorf("driver=%s lasso=%s", snap.Driver, snap.Lasso)
	}
	if len(snap.Selected) != 6 {
		t.Errorf("selected = %d, want the 6 points of the first cell", len(snap.Selected))
	}
	for _, p := range snap.Selected {
		if p.Row != 0 {
			t.Errorf("selected point from row %d", p.Row)
		}
	}
	if !bytes.Contains(v.Render(), []byte(`class="lasso-segment"`)) {
		t.Error("committed lasso should keep its segments")
	}
}

func TestDegenerateLasso(t *testing.T) {
	v := newVisual(t, Config{})
	v.ClickLine(chart.LineKey(0, 0, "Sales"), false)
	c := firstEntry(t, v).Bounds()
	p := geometry.Point{X: (c.Left + c.Right) / 2, Y: (c.Top + c.Bottom) / 2}
	v.MouseDown(p)
	v.MouseUp(p)
	snap := v.Snapshot()
	if snap.Driver != "none" || len(snap.Selected) != 0 {
		t.Errorf("degenerate lasso left driver=%s selected=%d", snap.Driver, len(snap.Selected))
	}
}

func TestSelectionSurvivesUpdate(t *testing.T) {
	v := newVisual(t, Config{})
	if !v.ClickLine(chart.LineKey(1, 0, "Costs"), false) {
		t.Fatal("line should be selected")
	}
	if err := v.Update(context.Background(), regions(), geometry.Size{Width: 400, Height: 300}); err != nil {
		t.Fatal(err)
	}
	s, _ := v.Model().Line(chart.LineKey(1, 0, "Costs"))
	if !s.Selected {
		t.Error("selection should be re-applied to the rebuilt model")
	}
	// East Costs never matches a West Costs point: the values differ.
	selected := chart.LineKey(1, 0, "Costs")
	for _, l := range v.Snapshot().Lines {
		want := selection.DimmedOpacity
		if l.Key == selected {
			want = selection.DefaultOpacity
		}
		if l.Opacity != want {
			t.Errorf("%s opacity = %v, want %v", l.Key, l.Opacity, want)
		}
	}
}

func TestStoreRestore(t *testing.T) {
	ctx := context.Background()
	store := &selection.MemoryStore{}

	v := newVisual(t, Config{Store: store})
	v.ClickLine(chart.LineKey(0, 0, "Sales"), false)
	if err := v.Persist(ctx); err != nil {
		t.Fatal(err)
	}

	restored := newVisual(t, Config{Store: store})
	if got := len(restored.Snapshot().Selected); got != 3 {
		t.Errorf("restored selected = %d, want 3", got)
	}
}

func TestHoverTooltip(t *testing.T) {
	v := newVisual(t, Config{})
	if v.Tooltip() != nil {
		t.Error("tooltip before any hover should be nil")
	}
	e := firstEntry(t, v)
	s0 := e.Slices[0]
	p := geometry.Point{X: e.Offset.X + s0.X, Y: e.Bounds().Top + 1}
	s, ok := v.Hover(p)
	if !ok || s.Category != s0.Category {
		t.Fatalf("Hover = %v, %v", s, ok)
	}
	if len(v.Tooltip()) == 0 {
		t.Error("hovered slice should have a tooltip")
	}
	if _, ok := v.Hover(geometry.Point{X: -5, Y: -5}); ok {
		t.Error("hover outside every plot should report false")
	}
	if v.Tooltip() != nil {
		t.Error("leaving the plot should end the hover session")
	}
}

func TestLegendClick(t *testing.T) {
	v := newVisual(t, Config{})
	v.ClickLegend("Sales", false)
	snap := v.Snapshot()
	if snap.Driver != "legend" || len(snap.Labels) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	for _, ic := range snap.Legend {
		if ic.Label == "Costs" && ic.Highlighted {
			t.Error("Costs should not be highlighted")
		}
	}
	v.ClickLegendBackground()
	if v.Snapshot().Driver != "none" {
		t.Error("legend background should clear the labels")
	}
}

func TestRenderOptions(t *testing.T) {
	v := newVisual(t, Config{Popups: true, Interactive: true})
	svg := v.Render()
	for _, want := range []string{`class="popup"`, "CustomEvent"} {
		if !bytes.Contains(svg, []byte(want)) {
			t.Errorf("render missing %q", want)
		}
	}
}
