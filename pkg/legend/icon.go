package legend

import (
	"fmt"
	"strings"
)

// IconShape is the glyph drawn next to a legend label.
type IconShape int

const (
	IconCircle IconShape = iota
	IconSquare
	IconLine
	IconTriangle
	IconDiamond
)

var iconNames = [...]string{"circle", "square", "line", "triangle", "diamond"}

func (s IconShape) String() string {
	if int(s) < len(iconNames) {
		return iconNames[s]
	}
	return fmt.Sprintf("IconShape(%d)", int(s))
}

// ParseIconShape converts a settings string to an IconShape.
func ParseIconShape(s string) (IconShape, error) {
	for i, name := range iconNames {
		if strings.EqualFold(s, name) {
			return IconShape(i), nil
		}
	}
	return IconCircle, fmt.Errorf("unknown legend icon %q (must be one of: %s)", s, strings.Join(iconNames[:], ", "))
}

// MarshalText implements encoding.TextMarshaler.
func (s IconShape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *IconShape) UnmarshalText(b []byte) error {
	v, err := ParseIconShape(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Width returns the horizontal space the icon occupies at the given size.
func (s IconShape) Width(size float64) float64 {
	if s == IconLine {
		return size * 2
	}
	return size
}

// Stroked reports whether the icon is drawn as a stroke rather than a fill.
func (s IconShape) Stroked() bool { return s == IconLine }

// Path returns the SVG path of the icon with its left edge at x and
// vertical centre at cy.
func (s IconShape) Path(x, cy, size float64) string {
	r := size / 2
	switch s {
	case IconSquare:
		return fmt.Sprintf("M%.2f,%.2f h%.2f v%.2f h%.2f Z", x, cy-r, size, size, -size)
	case IconLine:
		return fmt.Sprintf("M%.2f,%.2f h%.2f", x, cy, s.Width(size))
	case IconTriangle:
		return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f L%.2f,%.2f Z", x+r, cy-r, x+size, cy+r, x, cy+r)
	case IconDiamond:
		return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f L%.2f,%.2f L%.2f,%.2f Z", x+r, cy-r, x+size, cy, x+r, cy+r, x, cy)
	default:
		return fmt.Sprintf("M%.2f,%.2f a%.2f,%.2f 0 1,0 %.2f,0 a%.2f,%.2f 0 1,0 %.2f,0", x, cy, r, r, size, r, r, -size)
	}
}
