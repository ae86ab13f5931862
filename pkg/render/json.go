package render

import (
	"encoding/json"

	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/layout"
)

type jsonOutput struct {
	Title    string            `json:"title,omitempty"`
	Layout   layout.Result     `json:"layout"`
	Series   []jsonSeries      `json:"series"`
	Geometry []*geometry.Entry `json:"geometry"`
}

type jsonSeries struct {
	Key      string         `json:"key"`
	Name     string         `json:"name"`
	Row      int            `json:"row"`
	Column   int            `json:"column"`
	Color    string         `json:"color"`
	Points   int            `json:"points"`
	Identity chart.Identity `json:"identity"`
	Selected bool           `json:"selected,omitempty"`
}

// RenderJSON exports the layout, the series and the geometry index as a
// pretty-printed JSON document. Hosts use it to drive their own drawing
// while keeping selection and lasso hit-testing in sync with linevis.
func RenderJSON(m *chart.Model, res layout.Result, idx *geometry.Index) ([]byte, error) {
	out := jsonOutput{
		Title:  m.Title,
		Layout: res,
		Series: make([]jsonSeries, 0, len(m.Series)),
	}
	for _, s := range m.Series {
		out.Series = append(out.Series, jsonSeries{
			Key:      s.Key,
			Name:     s.Name,
			Row:      s.Row,
			Column:   s.Column,
			Color:    s.Format.Color,
			Points:   len(s.Points),
			Identity: s.Identity,
			Selected: s.Selected,
		})
	}
	if idx != nil {
		out.Geometry = idx.Entries()
	} else {
		out.Geometry = []*geometry.Entry{}
	}
	return json.MarshalIndent(out, "", "  ")
}
