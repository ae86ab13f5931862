package legend

import (
	"fmt"
	"strings"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/geometry"
)

// Position is where the legend sits relative to the plot area.
type Position int

const (
	None Position = iota
	Top
	Bottom
	Left
	Right
	TopCenter
	BottomCenter
	LeftCenter
	RightCenter
)

var positionNames = [...]string{
	None:         "None",
	Top:          "Top",
	Bottom:       "Bottom",
	Left:         "Left",
	Right:        "Right",
	TopCenter:    "TopCenter",
	BottomCenter: "BottomCenter",
	LeftCenter:   "LeftCenter",
	RightCenter:  "RightCenter",
}

func (p Position) String() string {
	if int(p) < len(positionNames) {
		return positionNames[p]
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// IsHorizontal reports whether the legend spans the width of the visual.
func (p Position) IsHorizontal() bool {
	return p == Top || p == Bottom || p == TopCenter || p == BottomCenter
}

// IsVertical reports whether the legend spans the height of the visual.
func (p Position) IsVertical() bool {
	return p == Left || p == Right || p == LeftCenter || p == RightCenter
}

// IsCentered reports whether items are centred along the legend's long axis.
func (p Position) IsCentered() bool {
	return p == TopCenter || p == BottomCenter || p == LeftCenter || p == RightCenter
}

// ParsePosition converts a name such as "TopCenter" (case-insensitive) to a Position.
func ParsePosition(s string) (Position, error) {
	for i, name := range positionNames {
		if strings.EqualFold(s, name) {
			return Position(i), nil
		}
	}
	return None, fmt.Errorf("unknown legend position %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Entry is one legend item.
type Entry struct {
	Label    string         `json:"label"`
	Color    string         `json:"color"`
	Tooltip  string         `json:"tooltip,omitempty"`
	Identity chart.Identity `json:"identity"`
}

// EntriesFor returns one entry per series display name, in legend order.
func EntriesFor(m *chart.Model) []Entry {
	entries := make([]Entry, 0, len(m.Names))
	for _, name := range m.Names {
		entries = append(entries, Entry{
			Label:    name,
			Color:    m.Color(name),
			Tooltip:  name,
			Identity: chart.NewIdentity("legend", name),
		})
	}
	return entries
}

// Margin is the space a rendered legend takes away from the plot.
type Margin struct {
	Width  float64
	Height float64
}

// Renderer lays out a legend at a requested position and reports the
// margin it realized.
type Renderer interface {
	Render(title string, entries []Entry, pos Position, viewport geometry.Size) Margin
}
