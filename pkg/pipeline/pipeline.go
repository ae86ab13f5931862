// Package pipeline provides the batch chart pipeline shared by the CLI and
// the HTTP host.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Read a dataset file into a table (cached by content hash)
//  2. Build: Turn the table into a chart model
//  3. Layout: Arrange the small-multiple grid (cached)
//  4. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	table, err := runner.Load(ctx, "sales.csv", dataset.Options{})
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, table, pipeline.Options{
//	    Width:   1200,
//	    Height:  800,
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linevis/pkg/cache"
	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/layout"
	"github.com/matzehuels/linevis/pkg/settings"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 600.0

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidModes is the set of supported small-multiple modes.
var ValidModes = map[settings.Mode]bool{
	settings.ModeFlow:   true,
	settings.ModeMatrix: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Width  float64       `json:"width,omitempty"`
	Height float64       `json:"height,omitempty"`
	Mode   settings.Mode `json:"mode,omitempty"` // overrides the settings file

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Popups      bool     `json:"popups,omitempty"`
	DataLabels  bool     `json:"data_labels,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Scale       float64  `json:"scale,omitempty"` // PNG only

	// Selection to render with, typically restored from a store.
	Selection []chart.Identity `json:"selection,omitempty"`
	Labels    []string         `json:"labels,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	SettingsPath string             `json:"-"`
	Settings     *settings.Settings `json:"-"`
	Logger       *log.Logger        `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Model is the chart model built from the table.
	Model *chart.Model

	// ModelHash is the content hash of the input table.
	ModelHash string

	// Layout is the computed small-multiple layout.
	Layout layout.Result

	// Index is the geometry index of the rendered chart.
	Index *geometry.Index

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount int
	SeriesCount int
	CellCount   int
	BuildTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMode checks that a small-multiple mode is valid. Empty is valid
// and keeps the mode of the settings.
func ValidateMode(mode settings.Mode) error {
	if mode != "" && !ValidModes[mode] {
		return fmt.Errorf("invalid mode: %q (must be one of: flow, matrix)", mode)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks options and applies defaults for the full
// pipeline. It loads SettingsPath when Settings is nil.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout resolves the settings and validates layout options.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if o.Settings == nil {
		if o.SettingsPath != "" {
			s, err := settings.Load(o.SettingsPath)
			if err != nil {
				return err
			}
			o.Settings = s
		} else {
			o.Settings = settings.Default()
		}
	}
	if o.Mode != "" && o.Settings.SmallMultiples.Mode != o.Mode {
		s := *o.Settings
		s.SmallMultiples.Mode = o.Mode
		o.Settings = &s
	}
	return o.Settings.Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	k := cache.LayoutKeyOpts{Width: o.Width, Height: o.Height}
	if o.Settings != nil {
		k.Mode = string(o.Settings.SmallMultiples.Mode)
		k.LegendPosition = o.Settings.LegendPosition().String()
		if data, err := o.Settings.Encode(); err == nil {
			k.SettingsHash = cache.Hash(data)
		}
	}
	return k
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		Popups:     o.Popups,
		DataLabels: o.DataLabels,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if len(o.Selection) > 0 || len(o.Labels) > 0 {
		ids := slices.Clone(o.Selection)
		slices.Sort(ids)
		k.SelectionHash = cache.HashJSON([]any{ids, o.Labels, o.Interactive})
	} else if o.Interactive {
		k.SelectionHash = "interactive"
	}
	return k
}
