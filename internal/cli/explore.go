package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/pipeline"
	"github.com/matzehuels/linevis/pkg/selection"
	"github.com/matzehuels/linevis/pkg/visual"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ExploreModel - Interactive line and legend selection
// =============================================================================

type explorePane int

const (
	paneLines explorePane = iota
	paneLegend
)

// ExploreModel is the bubbletea model for clicking through lines and
// legend items of one chart.
type ExploreModel struct {
	Visual  *visual.Visual
	Pane    explorePane
	Cursor  int
	Offset  int
	Height  int
	Multi   bool
	SVGPath string
	Status  string
}

// NewExploreModel creates an explore model over an updated visual.
func NewExploreModel(v *visual.Visual, svgPath string) ExploreModel {
	return ExploreModel{Visual: v, Height: 12, SVGPath: svgPath}
}

func (m ExploreModel) items() int {
	if m.Pane == paneLegend {
		return len(m.Visual.Snapshot().Legend)
	}
	return len(m.Visual.Model().Series)
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.Pane = 1 - m.Pane
			m.Cursor, m.Offset = 0, 0
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < m.items()-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "m":
			m.Multi = !m.Multi
		case "enter", " ":
			m.click()
		case "b":
			m.Visual.ClickLegendBackground()
		case "c":
			m.Visual.ClearSelection()
		case "s":
			m.save()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m *ExploreModel) click() {
	if m.items() == 0 {
		return
	}
	if m.Pane == paneLegend {
		m.Visual.ClickLegend(m.Visual.Snapshot().Legend[m.Cursor].Label, m.Multi)
		return
	}
	m.Visual.ClickLine(m.Visual.Model().Series[m.Cursor].Key, m.Multi)
}

func (m *ExploreModel) save() {
	if m.SVGPath == "" {
		m.Status = "no --svg path given"
		return
	}
	if err := os.WriteFile(m.SVGPath, m.Visual.Render(), 0o644); err != nil {
		m.Status = err.Error()
		return
	}
	m.Status = "saved " + m.SVGPath
}

func (m ExploreModel) View() string {
	var b strings.Builder
	snap := m.Visual.Snapshot()

	title := m.Visual.Model().Title
	if title == "" {
		title = "Chart"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ click  tab lines/legend  m multi  c clear  b legend bg  s save  q quit"))
	b.WriteString("\n\n")

	if m.Pane == paneLegend {
		b.WriteString(m.legendTable(snap))
	} else {
		b.WriteString(m.lineTable(snap))
	}
	b.WriteString("\n\n")

	multi := "off"
	if m.Multi {
		multi = "on"
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  driver %s · %d selected · multi %s", snap.Driver, len(snap.Selected), multi)))
	if m.Status != "" {
		b.WriteString("\n  " + StyleWarning.Render(m.Status))
	}
	return b.String()
}

func (m ExploreModel) window(n int) (int, int) {
	return m.Offset, min(m.Offset+m.Height, n)
}

func (m ExploreModel) lineTable(snap visual.Snapshot) string {
	start, end := m.window(len(snap.Lines))
	rows := [][]string{}
	for i := start; i < end; i++ {
		l := snap.Lines[i]
		row, col, series, _ := chart.ParseLineKey(l.Key)
		rows = append(rows, []string{
			cursorMark(i == m.Cursor),
			series,
			fmt.Sprintf("%d,%d", row, col),
			checkMark(l.Selected),
			strconv.FormatFloat(l.Opacity, 'f', 1, 64),
		})
	}
	return m.listTable([]string{"", "Series", "Cell", "Selected", "Opacity"}, rows, start)
}

func (m ExploreModel) legendTable(snap visual.Snapshot) string {
	start, end := m.window(len(snap.Legend))
	rows := [][]string{}
	for i := start; i < end; i++ {
		ic := snap.Legend[i]
		rows = append(rows, []string{
			cursorMark(i == m.Cursor),
			ic.Label,
			swatch(ic.Color),
			checkMark(ic.Highlighted),
		})
	}
	return m.listTable([]string{"", "Label", "Color", "Highlighted"}, rows, start)
}

func (m ExploreModel) listTable(headers []string, rows [][]string, offset int) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case offset+row == m.Cursor:
				return listSelectedStyle
			default:
				return listNormalStyle
			}
		}).
		Render()
}

func cursorMark(current bool) string {
	if current {
		return "▸"
	}
	return " "
}

func checkMark(on bool) string {
	if on {
		return iconSuccess
	}
	return ""
}

// =============================================================================
// Command
// =============================================================================

type exploreOpts struct {
	data    datasetFlags
	width   float64
	height  float64
	svg     string
	persist string
	noCache bool
}

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore [dataset]",
		Short: "Select lines and legend items interactively",
		Long: `Explore opens a terminal UI listing every line and legend item of the
chart. Clicking an entry applies the same selection rules the rendered chart
uses, and s writes the chart with the current selection to --svg.`,
		Example: `  linevis explore sales.csv --svg selected.svg
  linevis explore sales.csv --persist dashboard-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd, args[0], opts)
		},
	}

	opts.data.register(cmd)
	cmd.Flags().Float64Var(&opts.width, "width", pipeline.DefaultWidth, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", pipeline.DefaultHeight, "viewport height in pixels")
	cmd.Flags().StringVar(&opts.svg, "svg", "", "SVG file the s key writes to")
	cmd.Flags().StringVar(&opts.persist, "persist", "", "visual id to persist the selection under")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExplore(cmd *cobra.Command, input string, opts exploreOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

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
		cfg.Store = &selection.CacheStore{Cache: store, Key: runner.Keyer.SelectionKey(opts.persist)}
	}
	v := visual.New(cfg)
	defer v.Close()
	if err := v.Update(ctx, table, geometry.Size{Width: opts.width, Height: opts.height}); err != nil {
		return err
	}
	if v.Model().Empty() {
		printWarning("%s has no series to explore", input)
		return nil
	}

	if _, err := tea.NewProgram(NewExploreModel(v, opts.svg), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}

	if opts.persist != "" {
		if err := v.Persist(ctx); err != nil {
			return fmt.Errorf("persist selection: %w", err)
		}
		printSuccess("Saved selection as %s", StyleHighlight.Render(opts.persist))
		printDetail("%d points selected", v.State().Len())
	}
	return nil
}
