package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/visual"
)

func regionTable() chart.Table {
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

func newReplayVisual(t *testing.T) *visual.Visual {
	t.Helper()
	v := visual.New(visual.Config{})
	t.Cleanup(v.Close)
	return v
}

func TestReadScript(t *testing.T) {
	in := `
events:
  - line: {key: 0_0_Sales, multi: true}
  - legend: {label: Costs}
  - mousedown: {x: 10, y: 20}
  - resize: {width: 400, height: 300}
  - clear: true
`
	s, err := readScript(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if s.Width != 800 || s.Height != 600 {
		t.Errorf("viewport = %vx%v, want defaults", s.Width, s.Height)
	}
	if len(s.Events) != 5 {
		t.Fatalf("events = %d, want 5", len(s.Events))
	}
	if s.Events[0].Line == nil || s.Events[0].Line.Key != "0_0_Sales" || !s.Events[0].Line.Multi {
		t.Errorf("line event = %+v", s.Events[0].Line)
	}
	if s.Events[2].MouseDown == nil || s.Events[2].MouseDown.Y != 20 {
		t.Errorf("mousedown event = %+v", s.Events[2].MouseDown)
	}
	if s.Events[3].Resize == nil || s.Events[3].Resize.Width != 400 {
		t.Errorf("resize event = %+v", s.Events[3].Resize)
	}
	if !s.Events[4].Clear {
		t.Error("clear event not decoded")
	}
}

func TestReadScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"two actions", "events:\n  - clear: true\n    legend-background: true\n"},
		{"no action", "events:\n  - {}\n"},
		{"unknown field", "events:\n  - wiggle: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readScript(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReplayLineClick(t *testing.T) {
	v := newReplayVisual(t)
	s := Script{Width: 800, Height: 500, Events: []Event{
		{Line: &Click{Key: chart.LineKey(0, 0, "Sales")}},
	}}
	if err := replay(context.Background(), v, regionTable(), s); err != nil {
		t.Fatal(err)
	}
	snap := v.Snapshot()
	if len(snap.Selected) != 3 {
		t.Fatalf("selected = %d, want 3", len(snap.Selected))
	}
	for _, p := range snap.Selected {
		if p.Series != "Sales" || p.Row != 0 {
			t.Errorf("unexpected selected point %+v", p)
		}
	}
}

func TestReplayUnknownLine(t *testing.T) {
	v := newReplayVisual(t)
	s := Script{Width: 800, Height: 500, Events: []Event{
		{Line: &Click{Key: "9_9_Nope"}},
	}}
	if err := replay(context.Background(), v, regionTable(), s); err == nil {
		t.Error("expected error for unknown line")
	}
}

func TestReplayLassoSurvivesResize(t *testing.T) {
	// Resolve the first cell with the same viewport the script uses.
	probe := newReplayVisual(t)
	if err := probe.Update(context.Background(), regionTable(), geometry.Size{Width: 800, Height: 500}); err != nil {
		t.Fatal(err)
	}
	b := probe.Index().Entries()[0].Bounds()

	v := newReplayVisual(t)
	s := Script{Width: 800, Height: 500, Events: []Event{
		{MouseDown: &Pos{X: b.Right - 1, Y: b.Bottom - 1}},
		{MouseMove: &Pos{X: -1000, Y: -1000}},
		{MouseUp: &Pos{X: -1000, Y: -1000}},
		{Resize: &geometry.Size{Width: 600, Height: 400}},
	}}
	if err := replay(context.Background(), v, regionTable(), s); err != nil {
		t.Fatal(err)
	}
	snap := v.Snapshot()
	if snap.Driver != "lasso" {
		t.Errorf("driver = %s, want lasso", snap.Driver)
	}
	if len(snap.Selected) != 6 {
		t.Errorf("selected = %d, want the 6 points of the first cell", len(snap.Selected))
	}
}

func TestReplayLegendAndClear(t *testing.T) {
	v := newReplayVisual(t)
	s := Script{Width: 800, Height: 500, Events: []Event{
		{Legend: &Click{Label: "Costs"}},
	}}
	if err := replay(context.Background(), v, regionTable(), s); err != nil {
		t.Fatal(err)
	}
	if got := v.Snapshot().Labels; len(got) != 1 || got[0] != "Costs" {
		t.Errorf("labels = %v, want [Costs]", got)
	}

	if err := applyEvent(context.Background(), v, regionTable(), Event{Clear: true}); err != nil {
		t.Fatal(err)
	}
	if snap := v.Snapshot(); snap.Driver != "none" || len(snap.Labels) != 0 {
		t.Errorf("after clear: driver=%s labels=%v", snap.Driver, snap.Labels)
	}
}

func TestWriteReport(t *testing.T) {
	v := newReplayVisual(t)
	s := Script{Width: 800, Height: 500, Events: []Event{
		{Legend: &Click{Label: "Sales"}},
	}}
	if err := replay(context.Background(), v, regionTable(), s); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		asJSON bool
		want   []string
	}{
		{"yaml", false, []string{"driver: legend", "- Sales"}},
		{"json", true, []string{`"driver": "legend"`, `"labels": [`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeReport(&buf, report(v), tt.asJSON); err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}
