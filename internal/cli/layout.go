package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/layout"
	"github.com/matzehuels/linevis/pkg/pipeline"
	"github.com/matzehuels/linevis/pkg/settings"
)

// layoutOpts holds the flags of the layout command.
type layoutOpts struct {
	data    datasetFlags
	width   float64
	height  float64
	mode    string
	json    bool
	noCache bool
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Print the small-multiple layout of a dataset",
		Long: `Layout computes where every cell of the grid goes for the given viewport
without rendering anything. Use --json to get the full layout document.`,
		Example: `  linevis layout sales.csv --width 1200 --height 400
  linevis layout sales.csv --mode matrix --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], opts)
		},
	}

	opts.data.register(cmd)
	cmd.Flags().Float64Var(&opts.width, "width", pipeline.DefaultWidth, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", pipeline.DefaultHeight, "viewport height in pixels")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "small-multiple mode: flow or matrix (default: from settings)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input string, opts layoutOpts) error {
	ctx := cmd.Context()

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	table, err := runner.Load(ctx, input, opts.data.options())
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Width:        opts.width,
		Height:       opts.height,
		Mode:         settings.Mode(opts.mode),
		SettingsPath: opts.data.settings,
		Logger:       loggerFromContext(ctx),
	}
	if err := popts.ValidateForLayout(); err != nil {
		return err
	}
	m, err := chart.Build(table, popts.Settings.FormatFunc())
	if err != nil {
		return err
	}
	res, hit, err := runner.LayoutWithCacheInfo(ctx, m, pipeline.TableHash(table), popts)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printLayout(res)
	printStats(len(m.Series), len(res.Cells), hit)
	return nil
}

func printLayout(res layout.Result) {
	printKeyValue("Mode", string(res.Mode))
	printKeyValue("Active", strconv.FormatBool(res.Active))
	printKeyValue("Grid", fmt.Sprintf("%d per row, %d rows", res.PerRow, res.VisualRows))
	printKeyValue("Legend", res.LegendPosition.String())
	printKeyValue("Canvas", fmt.Sprintf("%.0f×%.0f", res.Canvas.Width, res.Canvas.Height))
	if res.Scroll {
		printWarning("cells exceed the %.0f×%.0f viewport", res.Container.Width, res.Container.Height)
	}
	printNewline()

	rows := make([][]string, 0, len(res.Cells))
	for _, cell := range res.Cells {
		state := ""
		if cell.Empty {
			state = StyleDim.Render("empty")
		}
		rows = append(rows, []string{
			cell.Key,
			strconv.Itoa(cell.Slot),
			fmt.Sprintf("%.0f,%.0f", cell.X, cell.Y),
			fmt.Sprintf("%.0f×%.0f", cell.Width, cell.Height),
			fmt.Sprintf("%.0f×%.0f", cell.Plot.Width(), cell.Plot.Height()),
			state,
		})
	}
	fmt.Println(renderTable([]string{"Cell", "Slot", "Origin", "Size", "Plot", ""}, rows))
}
