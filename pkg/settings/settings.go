// Package settings holds the visual formatting settings of a linevis chart.
//
// Settings are split into narrow structs, one per concern, so each component
// only receives what it reads: the layout engine gets [SmallMultiples], the
// legend gets [Legend], series formatting reads [Shapes] plus per-series
// overrides. Files are TOML:
//
//	[small_multiples]
//	mode = "flow"
//	min_unit_width = 160
//	show_separators = true
//
//	[legend]
//	position = "TopCenter"
//
//	[series."North America"]
//	color = "#FD625E"
//	style = "dashed"
package settings

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/errors"
	"github.com/matzehuels/linevis/pkg/legend"
)

// Mode selects how small-multiple cells are arranged.
type Mode string

const (
	ModeFlow   Mode = "flow"
	ModeMatrix Mode = "matrix"
)

// Settings is the complete settings bag.
type Settings struct {
	SmallMultiples SmallMultiples            `toml:"small_multiples"`
	Legend         Legend                    `toml:"legend"`
	Shapes         Shapes                    `toml:"shapes"`
	Axes           Axes                      `toml:"axes"`
	Labels         Labels                    `toml:"labels"`
	Tooltips       Tooltips                  `toml:"tooltips"`
	Series         map[string]SeriesOverride `toml:"series"`
}

// SmallMultiples configures the grid of sub-charts.
type SmallMultiples struct {
	Mode                    Mode    `toml:"mode"`
	MinUnitWidth            float64 `toml:"min_unit_width"`
	MinUnitHeight           float64 `toml:"min_unit_height"`
	MinColumnsPerRow        int     `toml:"min_columns_per_row"`
	ShowEmptySmallMultiples bool    `toml:"show_empty"`
	ShowSeparators          bool    `toml:"show_separators"`
	SeparatorWidth          float64 `toml:"separator_width"`
	ShowChartTitle          bool    `toml:"show_chart_title"`
	TitleSize               float64 `toml:"title_size"`
	FontSize                float64 `toml:"font_size"`
}

// Legend configures the legend.
type Legend struct {
	Show      bool             `toml:"show"`
	Position  legend.Position  `toml:"position"`
	Title     string           `toml:"title"`
	ShowTitle bool             `toml:"show_title"`
	FontSize  float64          `toml:"font_size"`
	Icon      legend.IconShape `toml:"icon"`
}

// Shapes holds the global line formatting every series falls back to.
type Shapes struct {
	StrokeWidth float64         `toml:"stroke_width"`
	Style       chart.LineStyle `toml:"style"`
	Marker      chart.Shape     `toml:"marker"`
	MarkerSize  float64         `toml:"marker_size"`
	ShowMarkers bool            `toml:"show_markers"`
	Stepped     bool            `toml:"stepped"`
}

// Axes configures the category and value axes.
type Axes struct {
	ShowX         bool    `toml:"show_x"`
	ShowY         bool    `toml:"show_y"`
	ShowGridlines bool    `toml:"show_gridlines"`
	FontSize      float64 `toml:"font_size"`
	MaxTicks      int     `toml:"max_ticks"`
}

// Labels configures data labels.
type Labels struct {
	Show      bool    `toml:"show"`
	FontSize  float64 `toml:"font_size"`
	Precision int     `toml:"precision"`
}

// Tooltips configures hover tooltips.
type Tooltips struct {
	Show bool `toml:"show"`
}

// SeriesOverride replaces individual [Shapes] values for one series.
// Nil fields fall back to the global value.
type SeriesOverride struct {
	Color       string           `toml:"color"`
	StrokeWidth *float64         `toml:"stroke_width"`
	Style       *chart.LineStyle `toml:"style"`
	Marker      *chart.Shape     `toml:"marker"`
	ShowMarkers *bool            `toml:"show_markers"`
	Stepped     *bool            `toml:"stepped"`
}

// Default returns the settings used when no file is given.
func Default() *Settings {
	return &Settings{
		SmallMultiples: SmallMultiples{
			Mode:                    ModeFlow,
			MinUnitWidth:            150,
			MinUnitHeight:           120,
			MinColumnsPerRow:        1,
			ShowEmptySmallMultiples: true,
			ShowSeparators:          true,
			SeparatorWidth:          8,
			ShowChartTitle:          true,
			TitleSize:               22,
			FontSize:                12,
		},
		Legend: Legend{
			Show:     true,
			Position: legend.Top,
			FontSize: 12,
			Icon:     legend.IconCircle,
		},
		Shapes: Shapes{
			StrokeWidth: 2,
			Style:       chart.StyleSolid,
			Marker:      chart.ShapeCircle,
			MarkerSize:  6,
		},
		Axes: Axes{
			ShowX:         true,
			ShowY:         true,
			ShowGridlines: true,
			FontSize:      11,
			MaxTicks:      6,
		},
		Labels: Labels{
			FontSize:  10,
			Precision: 2,
		},
		Tooltips: Tooltips{Show: true},
	}
}

// Load reads a TOML settings file on top of [Default].
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "settings file %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML settings on top of [Default] and validates the result.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	md, err := toml.Decode(string(data), s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSettings, err, "decode settings")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidSettings, "unknown settings keys: %s", strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode writes s as TOML.
func (s *Settings) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks value ranges. Zero-valued sizes are replaced by defaults.
func (s *Settings) Validate() error {
	def := Default()
	sm := &s.SmallMultiples
	switch sm.Mode {
	case ModeFlow, ModeMatrix:
	case "":
		sm.Mode = ModeFlow
	default:
		return errors.New(errors.ErrCodeInvalidSettings, "invalid small_multiples.mode %q (must be one of: flow, matrix)", sm.Mode)
	}
	if sm.MinUnitWidth < 0 || sm.MinUnitHeight < 0 || sm.SeparatorWidth < 0 || sm.TitleSize < 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "small_multiples sizes must not be negative")
	}
	if sm.MinColumnsPerRow < 1 {
		sm.MinColumnsPerRow = 1
	}
	if sm.FontSize <= 0 {
		sm.FontSize = def.SmallMultiples.FontSize
	}
	if s.Legend.FontSize <= 0 {
		s.Legend.FontSize = def.Legend.FontSize
	}
	if s.Shapes.StrokeWidth <= 0 {
		s.Shapes.StrokeWidth = def.Shapes.StrokeWidth
	}
	if s.Shapes.MarkerSize <= 0 {
		s.Shapes.MarkerSize = def.Shapes.MarkerSize
	}
	if s.Axes.FontSize <= 0 {
		s.Axes.FontSize = def.Axes.FontSize
	}
	if s.Axes.MaxTicks <= 1 {
		s.Axes.MaxTicks = def.Axes.MaxTicks
	}
	if s.Labels.FontSize <= 0 {
		s.Labels.FontSize = def.Labels.FontSize
	}
	if s.Labels.Precision < 0 || s.Labels.Precision > 10 {
		return errors.New(errors.ErrCodeInvalidSettings, "labels.precision must be between 0 and 10")
	}
	for name, o := range s.Series {
		if o.Color != "" {
			if err := errors.ValidateColor(o.Color); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidSettings, err, "series %q", name)
			}
		}
		if o.StrokeWidth != nil && *o.StrokeWidth <= 0 {
			return errors.New(errors.ErrCodeInvalidSettings, "series %q: stroke_width must be positive", name)
		}
	}
	return nil
}

// FormatFunc returns a [chart.FormatFunc] applying per-series overrides on
// top of the global shape settings and the default palette.
func (s *Settings) FormatFunc() chart.FormatFunc {
	return func(name string, index int) chart.Format {
		f := chart.Format{
			Color:       chart.Palette[index%len(chart.Palette)],
			StrokeWidth: s.Shapes.StrokeWidth,
			Style:       s.Shapes.Style,
			Marker:      s.Shapes.Marker,
			MarkerSize:  s.Shapes.MarkerSize,
			ShowMarkers: s.Shapes.ShowMarkers,
			Stepped:     s.Shapes.Stepped,
		}
		o, ok := s.Series[name]
		if !ok {
			return f
		}
		if o.Color != "" {
			f.Color = o.Color
		}
		if o.StrokeWidth != nil {
			f.StrokeWidth = *o.StrokeWidth
		}
		if o.Style != nil {
			f.Style = *o.Style
		}
		if o.Marker != nil {
			f.Marker = *o.Marker
		}
		if o.ShowMarkers != nil {
			f.ShowMarkers = *o.ShowMarkers
		}
		if o.Stepped != nil {
			f.Stepped = *o.Stepped
		}
		return f
	}
}

// LegendPosition returns the requested legend position, None when hidden.
func (s *Settings) LegendPosition() legend.Position {
	if !s.Legend.Show {
		return legend.None
	}
	return s.Legend.Position
}

// LegendTitle returns the legend title to render, "" when hidden.
func (s *Settings) LegendTitle() string {
	if !s.Legend.ShowTitle {
		return ""
	}
	return s.Legend.Title
}
