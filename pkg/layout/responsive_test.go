package layout

import (
	"testing"

	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/legend"
)

// countingLegend records every position it was asked to lay out.
type countingLegend struct {
	margins map[legend.Position]legend.Margin
	asked   []legend.Position
}

func (c *countingLegend) Render(_ string, _ []legend.Entry, pos legend.Position, _ geometry.Size) legend.Margin {
	c.asked = append(c.asked, pos)
	return c.margins[pos]
}

func TestResolveLegend(t *testing.T) {
	vp := geometry.Size{Width: 300, Height: 200}
	tests := []struct {
		name      string
		requested legend.Position
		margins   map[legend.Position]legend.Margin
		want      legend.Position
		wantAsked []legend.Position
	}{
		{
			name:      "fits at requested position",
			requested: legend.Right,
			margins:   map[legend.Position]legend.Margin{legend.Right: {Width: 80}},
			want:      legend.Right,
			wantAsked: []legend.Position{legend.Right},
		},
		{
			name:      "escalates to top",
			requested: legend.Left,
			margins: map[legend.Position]legend.Margin{
				legend.Left: {Width: 280},
				legend.Top:  {Height: 30},
			},
			want:      legend.Top,
			wantAsked: []legend.Position{legend.Left, legend.Top},
		},
		{
			name:      "drops legend when top fails too",
			requested: legend.LeftCenter,
			margins: map[legend.Position]legend.Margin{
				legend.LeftCenter: {Width: 280},
				legend.Top:        {Height: 180},
			},
			want:      legend.None,
			wantAsked: []legend.Position{legend.LeftCenter, legend.Top},
		},
		{
			name:      "top failing goes straight to none",
			requested: legend.Top,
			margins:   map[legend.Position]legend.Margin{legend.Top: {Height: 190}},
			want:      legend.None,
			wantAsked: []legend.Position{legend.Top},
		},
		{
			name:      "none is terminal",
			requested: legend.None,
			want:      legend.None,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &countingLegend{margins: tt.margins}
			got := ResolveLegend(tt.requested, vp, r, "", nil, nil)
			if got.Position != tt.want {
				t.Errorf("position = %v, want %v", got.Position, tt.want)
			}
			if len(r.asked) != len(tt.wantAsked) {
				t.Fatalf("asked = %v, want %v", r.asked, tt.wantAsked)
			}
			for i := range r.asked {
				if r.asked[i] != tt.wantAsked[i] {
					t.Errorf("asked[%d] = %v, want %v", i, r.asked[i], tt.wantAsked[i])
				}
			}
			if got.Steps > maxStepCount {
				t.Errorf("steps = %d exceeds budget", got.Steps)
			}
			if got.Position == legend.None && got.Margin != (legend.Margin{}) {
				t.Errorf("dropped legend still reserves %+v", got.Margin)
			}
		})
	}
}

func TestResolveLegendCountsAxes(t *testing.T) {
	vp := geometry.Size{Width: 300, Height: 200}
	r := &countingLegend{margins: map[legend.Position]legend.Margin{legend.Bottom: {Height: 100}}}
	axes := AxisMeasurerFunc(func(geometry.Size) Insets { return Insets{Bottom: 60} })
	got := ResolveLegend(legend.Bottom, vp, r, "", nil, axes)
	// 200 - 100 legend - 60 axis leaves 40 < 50: escalate to Top.
	if got.Position != legend.None && got.Position != legend.Top {
		t.Fatalf("position = %v", got.Position)
	}
	if r.asked[0] != legend.Bottom || len(r.asked) < 2 || r.asked[1] != legend.Top {
		t.Errorf("asked = %v", r.asked)
	}
}
