package chart

import (
	"testing"
	"time"

	"github.com/matzehuels/linevis/pkg/errors"
)

func sampleTable() Table {
	return Table{
		Title: "Sales",
		Records: []Record{
			{Category: Number(3), Series: "North", Row: "2024", Column: "A", Value: 30},
			{Category: Number(1), Series: "North", Row: "2024", Column: "A", Value: 10},
			{Category: Number(2), Series: "South", Row: "2024", Column: "A", Value: 5},
			{Category: Number(1), Series: "South", Row: "2024", Column: "B", Value: 7},
			{Category: Number(1), Series: "North", Row: "2025", Column: "B", Value: 1},
			{Category: Number(1), Series: "North", Row: "2025", Column: "B", Value: 2},
		},
	}
}

func TestBuild(t *testing.T) {
	m, err := Build(sampleTable(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if m.Rows() != 2 || m.Columns() != 2 {
		t.Fatalf("grid = %dx%d, want 2x2", m.Rows(), m.Columns())
	}
	if got := len(m.Series); got != 4 {
		t.Fatalf("series = %d, want 4", got)
	}

	wantCats := []float64{1, 2, 3}
	if len(m.Categories) != len(wantCats) {
		t.Fatalf("categories = %v", m.Categories)
	}
	for i, c := range m.Categories {
		if c.Number != wantCats[i] {
			t.Errorf("category[%d] = %v, want %v", i, c.Number, wantCats[i])
		}
	}

	north, ok := m.Line(LineKey(0, 0, "North"))
	if !ok {
		t.Fatal("missing line 0_0_North")
	}
	if north.Points[0].Category.Number != 1 || north.Points[1].Category.Number != 3 {
		t.Errorf("points not in axis order: %v, %v", north.Points[0].Category, north.Points[1].Category)
	}

	summed, _ := m.Line(LineKey(1, 1, "North"))
	if len(summed.Points) != 1 || summed.Points[0].Value != 3 {
		t.Errorf("duplicate category not summed: %+v", summed.Points)
	}

	if m.Occupied(1, 0) {
		t.Error("cell (1,0) should be empty")
	}
	if got := m.CellSeries(0, 0); len(got) != 2 {
		t.Errorf("CellSeries(0,0) = %v, want 2 entries", got)
	}
	if m.MinValue != 3 || m.MaxValue != 30 {
		t.Errorf("value range = [%v, %v], want [3, 30]", m.MinValue, m.MaxValue)
	}
	if got := len(m.Points()); got != 5 {
		t.Errorf("Points() = %d, want 5", got)
	}
}

func TestBuildLineKeyIndex(t *testing.T) {
	m, err := Build(sampleTable(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range m.Series {
		if m.LineKeyIndex[s.Key] != i {
			t.Errorf("LineKeyIndex[%q] = %d, want %d", s.Key, m.LineKeyIndex[s.Key], i)
		}
	}
}

func TestBuildIdentitiesStable(t *testing.T) {
	a, _ := Build(sampleTable(), nil)
	b, _ := Build(sampleTable(), nil)
	for i := range a.Points() {
		if a.Points()[i].Identity != b.Points()[i].Identity {
			t.Fatalf("identity %d differs across rebuilds", i)
		}
	}
	seen := make(map[Identity]bool)
	for _, p := range a.Points() {
		if seen[p.Identity] {
			t.Fatalf("duplicate identity %s", p.Identity)
		}
		seen[p.Identity] = true
	}
}

func TestBuildDefaultTooltip(t *testing.T) {
	m, _ := Build(sampleTable(), nil)
	p := m.Points()[0]
	if p.DisplayName() != p.Series {
		t.Errorf("DisplayName() = %q, want %q", p.DisplayName(), p.Series)
	}
}

func TestBuildTextCategoriesKeepOrder(t *testing.T) {
	tbl := Table{Records: []Record{
		{Category: Text("Mar"), Series: "s", Value: 1},
		{Category: Text("Jan"), Series: "s", Value: 2},
		{Category: Text("Feb"), Series: "s", Value: 3},
	}}
	m, err := Build(tbl, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Mar", "Jan", "Feb"}
	for i, c := range m.Categories {
		if c.Text != want[i] {
			t.Errorf("category[%d] = %q, want %q", i, c.Text, want[i])
		}
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
	}{
		{"mixed kinds", []Record{
			{Category: Text("a"), Series: "s"},
			{Category: Number(1), Series: "s"},
		}},
		{"control char in series", []Record{
			{Category: Text("a"), Series: "bad\nname"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(Table{Records: tt.records}, nil)
			if !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("Build error = %v, want INVALID_DATASET", err)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	m, err := Build(Table{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Empty() || len(m.Points()) != 0 {
		t.Error("empty table should build an empty model")
	}
	if m.Occupied(0, 0) {
		t.Error("empty model has no occupied cells")
	}
}

func TestBuildBlankSeries(t *testing.T) {
	m, err := Build(Table{Records: []Record{{Category: Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), Value: 1}}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Line(LineKey(0, 0, BlankName)); !ok {
		t.Errorf("blank series not renamed: %v", m.LineKeyIndex)
	}
}

func TestSeriesSyncSelected(t *testing.T) {
	m, _ := Build(sampleTable(), nil)
	s := m.Series[0]
	s.Points[1].Selected = true
	m.SyncSelected()
	if !s.Selected {
		t.Error("series with a selected point should be selected")
	}
	s.Points[1].Selected = false
	s.SyncSelected()
	if s.Selected {
		t.Error("series without selected points should not be selected")
	}
}
