package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/pipeline"
	"github.com/matzehuels/linevis/pkg/settings"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	data        datasetFlags
	output      string
	formats     string
	width       float64
	height      float64
	mode        string
	popups      bool
	dataLabels  bool
	interactive bool
	scale       float64
	selection   []string
	labels      []string
	noCache     bool
	refresh     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{popups: true}

	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render a dataset as small-multiple line charts",
		Long: `Render reads a dataset (csv, tsv, json, yaml or xlsx), lays out one line
chart per row/column group and writes the result in the requested formats.

Selections can be applied up front with --select (point or line identities)
and --label (legend labels); unselected lines are then drawn faded.`,
		Example: `  linevis render sales.csv
  linevis render sales.xlsx --sheet 2024 -f svg,png -o out/sales
  linevis render sales.csv --mode matrix --width 1600 --height 900
  linevis render sales.csv --label Costs --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], opts)
		},
	}

	opts.data.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: dataset name)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "svg", "comma-separated formats: svg, png, pdf, json")
	cmd.Flags().Float64Var(&opts.width, "width", pipeline.DefaultWidth, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", pipeline.DefaultHeight, "viewport height in pixels")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "small-multiple mode: flow or matrix (default: from settings)")
	cmd.Flags().BoolVar(&opts.popups, "popups", opts.popups, "embed hover popups")
	cmd.Flags().BoolVar(&opts.dataLabels, "data-labels", false, "draw values above points")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "embed the event forwarding script")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().StringSliceVar(&opts.selection, "select", nil, "identity to render selected (repeatable)")
	cmd.Flags().StringSliceVar(&opts.labels, "label", nil, "legend label to render selected (repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached layouts and artifacts")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	table, loadHit, err := runner.LoadWithCacheInfo(ctx, input, opts.data.options())
	if err != nil {
		return err
	}
	logger.Debug("loaded dataset", "path", input, "records", len(table.Records), "cached", loadHit)

	popts := pipeline.Options{
		Width:        opts.width,
		Height:       opts.height,
		Mode:         settings.Mode(opts.mode),
		Formats:      parseFormats(opts.formats),
		Scale:        opts.scale,
		Labels:       opts.labels,
		Refresh:      opts.refresh,
		SettingsPath: opts.data.settings,
		Logger:       logger,
	}
	setCLIDefaults(&popts)
	popts.Popups = opts.popups
	popts.DataLabels = opts.dataLabels
	popts.Interactive = opts.interactive
	for _, id := range opts.selection {
		popts.Selection = append(popts.Selection, chart.Identity(id))
	}

	spin := startSpinner(ctx, stderr, "Rendering "+input+"...")
	stage := startStage(logger, "render")
	result, err := runner.Execute(ctx, table, popts)
	if err != nil {
		spin.fail("Render failed")
		return err
	}
	spin.stop()
	stage.done("rendered", "cells", result.Stats.CellCount, "formats", strings.Join(popts.Formats, ","))

	base := basePath(opts.output, input)
	paths, err := writeArtifacts(base, popts.Formats, result.Artifacts)
	if err != nil {
		return err
	}

	title := result.Model.Title
	if title == "" {
		title = input
	}
	printSuccess("Rendered %s", StyleHighlight.Render(title))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.SeriesCount, result.Stats.CellCount, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	if result.Layout.Scroll {
		printWarning("cells exceed the viewport; the chart scrolls")
	}
	return nil
}

// writeArtifacts writes one file per format next to base and returns the
// written paths in format order.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			return nil, fmt.Errorf("no %s output produced", f)
		}
		path := base + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
