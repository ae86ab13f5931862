package chart

import (
	"fmt"
	"strings"
)

// LineStyle is the dash pattern of a rendered line.
type LineStyle int

const (
	StyleSolid LineStyle = iota
	StyleDashed
	StyleDotted
)

var lineStyleNames = [...]string{"solid", "dashed", "dotted"}

func (s LineStyle) String() string {
	if int(s) < len(lineStyleNames) {
		return lineStyleNames[s]
	}
	return fmt.Sprintf("LineStyle(%d)", int(s))
}

// DashArray returns the SVG stroke-dasharray for the style scaled to the
// stroke width, or "" for solid lines.
func (s LineStyle) DashArray(strokeWidth float64) string {
	w := max(strokeWidth, 1)
	switch s {
	case StyleDashed:
		return fmt.Sprintf("%.1f %.1f", 4*w, 2*w)
	case StyleDotted:
		return fmt.Sprintf("%.1f %.1f", w, 2*w)
	default:
		return ""
	}
}

// ParseLineStyle converts a settings string into a LineStyle.
func ParseLineStyle(s string) (LineStyle, error) {
	for i, name := range lineStyleNames {
		if strings.EqualFold(s, name) {
			return LineStyle(i), nil
		}
	}
	return StyleSolid, fmt.Errorf("unknown line style %q (must be one of: solid, dashed, dotted)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s LineStyle) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LineStyle) UnmarshalText(b []byte) error {
	v, err := ParseLineStyle(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Shape is the marker drawn at each data point. Every variant knows how
// to draw and measure itself; callers never switch on marker names.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeSquare
	ShapeTriangle
	ShapeDiamond
	ShapeCross
)

var shapeNames = [...]string{"circle", "square", "triangle", "diamond", "cross"}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape converts a settings string into a Shape.
func ParseShape(s string) (Shape, error) {
	for i, name := range shapeNames {
		if strings.EqualFold(s, name) {
			return Shape(i), nil
		}
	}
	return ShapeCircle, fmt.Errorf("unknown marker shape %q (must be one of: %s)", s, strings.Join(shapeNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(b []byte) error {
	v, err := ParseShape(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Extent returns the half-width of the marker's bounding box for a marker
// of the given size. Used for hit testing and label offsets.
func (s Shape) Extent(size float64) float64 {
	switch s {
	case ShapeTriangle:
		return size * 0.6
	case ShapeDiamond:
		return size * 0.7
	default:
		return size / 2
	}
}

// Path returns an SVG path centred on (cx, cy) for a marker of the given size.
func (s Shape) Path(cx, cy, size float64) string {
	r := size / 2
	switch s {
	case ShapeSquare:
		return fmt.Sprintf("M%.2f,%.2f h%.2f v%.2f h%.2f Z", cx-r, cy-r, size, size, -size)
	case ShapeTriangle:
		h := s.Extent(size)
		return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f L%.2f,%.2f Z", cx, cy-h, cx+h, cy+h*0.8, cx-h, cy+h*0.8)
	case ShapeDiamond:
		h := s.Extent(size)
		return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f L%.2f,%.2f L%.2f,%.2f Z", cx, cy-h, cx+h, cy, cx, cy+h, cx-h, cy)
	case ShapeCross:
		return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f M%.2f,%.2f L%.2f,%.2f", cx-r, cy-r, cx+r, cy+r, cx-r, cy+r, cx+r, cy-r)
	default:
		return fmt.Sprintf("M%.2f,%.2f a%.2f,%.2f 0 1,0 %.2f,0 a%.2f,%.2f 0 1,0 %.2f,0", cx-r, cy, r, r, size, r, r, -size)
	}
}

// Filled reports whether the marker is drawn with a fill rather than a stroke only.
func (s Shape) Filled() bool { return s != ShapeCross }

// Format holds the resolved display attributes of one series.
type Format struct {
	Color       string
	StrokeWidth float64
	Style       LineStyle
	Marker      Shape
	MarkerSize  float64
	ShowMarkers bool
	Stepped     bool
}

// FormatFunc resolves the display attributes for the series with the given
// display name. index is the position of the name in legend order.
type FormatFunc func(name string, index int) Format

// Palette is the default series color cycle.
var Palette = []string{
	"#01B8AA", "#374649", "#FD625E", "#F2C80F", "#5F6B6D",
	"#8AD4EB", "#FE9666", "#A66999", "#3599B8", "#DFBFBF",
}

// DefaultFormat is the FormatFunc used when none is supplied.
func DefaultFormat(_ string, index int) Format {
	return Format{
		Color:       Palette[index%len(Palette)],
		StrokeWidth: 2,
		MarkerSize:  6,
	}
}
