package chart

import "testing"

func TestParseLineKey(t *testing.T) {
	tests := []struct {
		key     string
		row     int
		col     int
		series  string
		wantErr bool
	}{
		{"0_0_Revenue", 0, 0, "Revenue", false},
		{"3_12_gross_margin", 3, 12, "gross_margin", false},
		{"1_2_", 1, 2, "", false},
		{"1_Revenue", 0, 0, "", true},
		{"a_0_Revenue", 0, 0, "", true},
		{"-1_0_Revenue", 0, 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			row, col, series, err := ParseLineKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLineKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if row != tt.row || col != tt.col || series != tt.series {
				t.Errorf("ParseLineKey(%q) = %d, %d, %q", tt.key, row, col, series)
			}
		})
	}
}

func TestLineKeyRoundTrip(t *testing.T) {
	key := LineKey(4, 7, "a_b_c")
	if CellOf(key) != CellKey(4, 7) {
		t.Errorf("CellOf(%q) = %q", key, CellOf(key))
	}
	if CellOf("garbage") != "" {
		t.Error("CellOf should return empty for malformed keys")
	}
}

func TestShapePaths(t *testing.T) {
	for _, s := range []Shape{ShapeCircle, ShapeSquare, ShapeTriangle, ShapeDiamond, ShapeCross} {
		t.Run(s.String(), func(t *testing.T) {
			if s.Path(10, 10, 6) == "" {
				t.Error("empty path")
			}
			if s.Extent(6) <= 0 {
				t.Error("non-positive extent")
			}
			parsed, err := ParseShape(s.String())
			if err != nil || parsed != s {
				t.Errorf("ParseShape(%q) = %v, %v", s.String(), parsed, err)
			}
		})
	}
	if _, err := ParseShape("hexagon"); err == nil {
		t.Error("unknown shape should fail")
	}
}

func TestLineStyleDashArray(t *testing.T) {
	if StyleSolid.DashArray(2) != "" {
		t.Error("solid has no dash array")
	}
	if StyleDashed.DashArray(2) != "8.0 4.0" {
		t.Errorf("dashed = %q", StyleDashed.DashArray(2))
	}
	if StyleDotted.DashArray(0.5) != "1.0 2.0" {
		t.Errorf("dotted = %q", StyleDotted.DashArray(0.5))
	}
}
