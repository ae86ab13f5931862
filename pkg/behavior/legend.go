package behavior

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/legend"
	"github.com/matzehuels/linevis/pkg/observability"
	"github.com/matzehuels/linevis/pkg/selection"
)

// DimmedIconColor replaces the icon color of a legend entry that is not
// part of the current selection.
const DimmedIconColor = "#A6A6A6"

// Icon is the resolved appearance of one legend icon.
type Icon struct {
	Label       string  `json:"label"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
	Highlighted bool    `json:"highlighted"`
}

// Legend edits the selected legend labels and recolors the legend icons
// whenever the selection changes.
type Legend struct {
	state   *selection.State
	handler selection.Handler
	logger  *log.Logger

	model       *chart.Model
	entries     []legend.Entry
	icons       []Icon
	unsubscribe func()
}

// NewLegend returns a legend behavior observing state.
func NewLegend(state *selection.State, handler selection.Handler, opts ...Option) *Legend {
	o := newOptions(opts)
	b := &Legend{state: state, handler: handler, logger: o.logger}
	b.unsubscribe = state.Subscribe(func(selection.Event) { b.recolor() })
	return b
}

// Bind attaches the model and its legend entries.
func (b *Legend) Bind(m *chart.Model, entries []legend.Entry) {
	b.model = m
	b.entries = entries
	b.recolor()
}

// Click handles a click on the legend item with the given label. A click
// while a lasso exists first clears the lasso and its selection.
func (b *Legend) Click(label string, multi bool) {
	if b.state.HasLasso() {
		b.state.SetLasso(false)
		b.handler.HandleClearSelection()
		b.logger.Debug("legend click cleared lasso")
	} else if b.handler.HasSelection() {
		b.handler.HandleClearSelection()
	}

	if multi {
		b.state.ToggleLabel(label)
	} else {
		b.state.SetLabels([]string{label})
	}
	b.logger.Debug("legend click", "label", label, "multi", multi, "labels", b.state.Labels())
	observability.Interaction().OnLegendClick(label, multi)
}

// ClearCatcher handles a click on the legend background.
func (b *Legend) ClearCatcher() {
	b.state.ClearLabels()
}

// Icons returns the icon appearance of every legend entry.
func (b *Legend) Icons() []Icon { return b.icons }

// Close stops observing the selection.
func (b *Legend) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

func (b *Legend) recolor() {
	var series []*chart.Series
	if b.model != nil {
		series = b.model.Series
	}
	active := b.state.Active()

	icons := make([]Icon, 0, len(b.entries))
	for _, e := range b.entries {
		hl := b.state.LabelSelected(e.Label, series)
		icon := Icon{
			Label:       e.Label,
			Color:       e.Color,
			Opacity:     selection.Opacity(hl, active),
			Highlighted: hl,
		}
		if active && !hl {
			icon.Color = DimmedIconColor
		}
		icons = append(icons, icon)
	}
	b.icons = icons
}
