package visual

import (
	"github.com/matzehuels/linevis/pkg/behavior"
	"github.com/matzehuels/linevis/pkg/chart"
)

// Snapshot is a serializable report of the selection as the user sees it.
type Snapshot struct {
	Driver   string          `json:"driver" yaml:"driver"`
	Lasso    string          `json:"lasso" yaml:"lasso"`
	Labels   []string        `json:"labels" yaml:"labels"`
	Selected []SelectedPoint `json:"selected" yaml:"selected"`
	Lines    []LineState     `json:"lines" yaml:"lines"`
	Legend   []behavior.Icon `json:"legend" yaml:"legend"`
}

// SelectedPoint describes one selected point.
type SelectedPoint struct {
	Identity chart.Identity `json:"identity" yaml:"identity"`
	Series   string         `json:"series" yaml:"series"`
	Category string         `json:"category" yaml:"category"`
	Value    float64        `json:"value" yaml:"value"`
	Row      int            `json:"row" yaml:"row"`
	Column   int            `json:"column" yaml:"column"`
}

// LineState is the rendered state of one line.
type LineState struct {
	Key      string  `json:"key" yaml:"key"`
	Selected bool    `json:"selected" yaml:"selected"`
	Opacity  float64 `json:"opacity" yaml:"opacity"`
}

// Snapshot reports the current selection. Selected points are listed in
// model order; identities not present in the model are omitted.
func (v *Visual) Snapshot() Snapshot {
	s := Snapshot{
		Driver: v.state.Driver().String(),
		Lasso:  v.lasso.Phase().String(),
		Labels: v.state.Labels(),
		Legend: v.legend.Icons(),
	}
	if v.model == nil {
		return s
	}
	op := v.line.Opacities()
	for _, sr := range v.model.Series {
		s.Lines = append(s.Lines, LineState{Key: sr.Key, Selected: sr.Selected, Opacity: op.Line(sr.Key)})
		for _, p := range sr.Points {
			if !p.Selected {
				continue
			}
			s.Selected = append(s.Selected, SelectedPoint{
				Identity: p.Identity,
				Series:   p.Series,
				Category: p.Category.String(),
				Value:    p.Value,
				Row:      p.Row,
				Column:   p.Column,
			})
		}
	}
	return s
}
