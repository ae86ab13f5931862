package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/linevis/pkg/cache"
	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/pipeline"
	"github.com/matzehuels/linevis/pkg/selection"
	"github.com/matzehuels/linevis/pkg/settings"
	"github.com/matzehuels/linevis/pkg/visual"
)

// =============================================================================
// Script Format
// =============================================================================

// Script is a recorded interaction session. Coordinates are in visual
// pixels, the same space the rendered SVG uses.
//
//	width: 800
//	height: 500
//	events:
//	  - mousedown: {x: 120, y: 80}
//	  - mousemove: {x: 300, y: 200}
//	  - mouseup: {x: 300, y: 200}
//	  - line: {key: 0_0_Sales, multi: true}
//	  - legend: {label: Costs}
//	  - hover: {x: 200, y: 150}
//	  - resize: {width: 400, height: 300}
//	  - clear: true
type Script struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Events []Event `yaml:"events"`
}

// Event is one step of a script. Exactly one field must be set.
type Event struct {
	MouseDown        *Pos           `yaml:"mousedown,omitempty"`
	MouseMove        *Pos           `yaml:"mousemove,omitempty"`
	MouseUp          *Pos           `yaml:"mouseup,omitempty"`
	Hover            *Pos           `yaml:"hover,omitempty"`
	Line             *Click         `yaml:"line,omitempty"`
	Legend           *Click         `yaml:"legend,omitempty"`
	LegendBackground bool           `yaml:"legend-background,omitempty"`
	Clear            bool           `yaml:"clear,omitempty"`
	Resize           *geometry.Size `yaml:"resize,omitempty"`
}

// Pos is a pointer position.
type Pos struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p Pos) point() geometry.Point { return geometry.Point{X: p.X, Y: p.Y} }

// Click addresses a line by key or a legend item by label.
type Click struct {
	Key   string `yaml:"key,omitempty"`
	Label string `yaml:"label,omitempty"`
	Multi bool   `yaml:"multi,omitempty"`
}

func (e Event) actions() int {
	n := 0
	for _, set := range []bool{
		e.MouseDown != nil, e.MouseMove != nil, e.MouseUp != nil, e.Hover != nil,
		e.Line != nil, e.Legend != nil, e.LegendBackground, e.Clear, e.Resize != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// readScript decodes a YAML script, rejecting unknown fields.
func readScript(r io.Reader) (Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	if s.Width == 0 {
		s.Width = pipeline.DefaultWidth
	}
	if s.Height == 0 {
		s.Height = pipeline.DefaultHeight
	}
	for i, ev := range s.Events {
		if n := ev.actions(); n != 1 {
			return Script{}, fmt.Errorf("event %d: want exactly one action, got %d", i+1, n)
		}
	}
	return s, nil
}

// =============================================================================
// Playback
// =============================================================================

// replayReport is what the replay command prints.
type replayReport struct {
	visual.Snapshot `yaml:",inline"`
	Tooltip         []tooltipRow `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
}

type tooltipRow struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// replay updates v with table at the script viewport and applies every
// event in order.
func replay(ctx context.Context, v *visual.Visual, table chart.Table, s Script) error {
	viewport := geometry.Size{Width: s.Width, Height: s.Height}
	if err := v.Update(ctx, table, viewport); err != nil {
		return err
	}
	for i, ev := range s.Events {
		if err := applyEvent(ctx, v, table, ev); err != nil {
			return fmt.Errorf("event %d: %w", i+1, err)
		}
	}
	return nil
}

func applyEvent(ctx context.Context, v *visual.Visual, table chart.Table, ev Event) error {
	switch {
	case ev.MouseDown != nil:
		v.MouseDown(ev.MouseDown.point())
	case ev.MouseMove != nil:
		v.MouseMove(ev.MouseMove.point())
	case ev.MouseUp != nil:
		v.MouseUp(ev.MouseUp.point())
	case ev.Hover != nil:
		v.Hover(ev.Hover.point())
	case ev.Line != nil:
		if _, ok := v.Model().Line(ev.Line.Key); !ok {
			return fmt.Errorf("unknown line %q", ev.Line.Key)
		}
		v.ClickLine(ev.Line.Key, ev.Line.Multi)
	case ev.Legend != nil:
		v.ClickLegend(ev.Legend.Label, ev.Legend.Multi)
	case ev.LegendBackground:
		v.ClickLegendBackground()
	case ev.Clear:
		v.ClearSelection()
	case ev.Resize != nil:
		return v.Update(ctx, table, *ev.Resize)
	}
	return nil
}

func report(v *visual.Visual) replayReport {
	r := replayReport{Snapshot: v.Snapshot()}
	for _, item := range v.Tooltip() {
		r.Tooltip = append(r.Tooltip, tooltipRow{Name: item.DisplayName, Value: item.Value})
	}
	return r
}

// =============================================================================
// Command
// =============================================================================

type replayOpts struct {
	data    datasetFlags
	script  string
	svg     string
	json    bool
	persist string
	noCache bool
}

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var opts replayOpts

	cmd := &cobra.Command{
		Use:   "replay [dataset]",
		Short: "Replay an interaction script and print the resulting selection",
		Long: `Replay drives a chart with a YAML script of pointer and click events
(lasso drags, line clicks, legend clicks, hovers and resizes) and prints
which points, lines and legend items end up selected.

With --persist the selection is loaded from and saved to the cache under the
given visual id, so consecutive replays continue where the last one stopped.`,
		Example: `  linevis replay sales.csv --script session.yaml
  linevis replay sales.csv --script session.yaml --svg selected.svg
  linevis replay sales.csv --script session.yaml --persist dashboard-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd, args[0], opts)
		},
	}

	opts.data.register(cmd)
	cmd.Flags().StringVar(&opts.script, "script", "", "event script (YAML, - for stdin)")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "write the final chart to this SVG file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON instead of YAML")
	cmd.Flags().StringVar(&opts.persist, "persist", "", "visual id to persist the selection under")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func (c *CLI) runReplay(cmd *cobra.Command, input string, opts replayOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	script, err := openScript(opts.script)
	if err != nil {
		return err
	}

	store, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, nil, logger)
	defer runner.Close()

	table, err := runner.Load(ctx, input, opts.data.options())
	if err != nil {
		return err
	}
	s, err := loadSettings(opts.data.settings)
	if err != nil {
		return err
	}

	cfg := visual.Config{Settings: s, Logger: logger, Popups: true}
	if opts.persist != "" {
		cfg.Store = &selection.CacheStore{Cache: store, Key: runner.Keyer.SelectionKey(opts.persist), TTL: cache.TTLSelection}
	}
	v := visual.New(cfg)
	defer v.Close()

	if err := replay(ctx, v, table, script); err != nil {
		return err
	}
	if opts.persist != "" {
		if err := v.Persist(ctx); err != nil {
			return fmt.Errorf("persist selection: %w", err)
		}
		logger.Debug("persisted selection", "id", opts.persist, "selected", v.State().Len())
	}
	if opts.svg != "" {
		if err := os.WriteFile(opts.svg, v.Render(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.svg, err)
		}
	}
	return writeReport(os.Stdout, report(v), opts.json)
}

func openScript(path string) (Script, error) {
	if path == "-" {
		return readScript(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return Script{}, err
	}
	defer f.Close()
	return readScript(f)
}

// loadSettings reads a settings file, or returns the defaults for "".
func loadSettings(path string) (*settings.Settings, error) {
	if path == "" {
		return settings.Default(), nil
	}
	return settings.Load(path)
}

func writeReport(w io.Writer, r replayReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(r)
}
