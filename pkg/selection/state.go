package selection

import (
	"slices"

	"github.com/matzehuels/linevis/pkg/chart"
)

const (
	// DimmedOpacity is applied to unselected geometry while a selection exists.
	DimmedOpacity = 0.4
	// DefaultOpacity is applied to everything else.
	DefaultOpacity = 1.0
)

// Opacity returns the opacity of an element given whether it is selected
// and whether anything is selected at all.
func Opacity(selected, hasSelection bool) float64 {
	if !selected && hasSelection {
		return DimmedOpacity
	}
	return DefaultOpacity
}

// Driver names the interaction modality that currently determines opacity.
type Driver int

const (
	DriverNone Driver = iota
	DriverPoints
	DriverLegend
	DriverLasso
)

var driverNames = [...]string{"none", "points", "legend", "lasso"}

func (d Driver) String() string {
	if int(d) < len(driverNames) {
		return driverNames[d]
	}
	return "unknown"
}

// EventKind classifies a [State] change.
type EventKind int

const (
	EventSelected EventKind = iota
	EventCleared
	EventLabels
	EventLasso
)

// Event is delivered to observers after every State change.
type Event struct {
	Kind     EventKind
	Driver   Driver
	HasLasso bool
}

// State is the selection shared by every behavior of one visual: the
// selected identity tokens, the lasso flag and the ordered legend labels.
//
// State does not arbitrate by itself; behaviors clear competing modalities
// before they write. [State.Driver] reports which modality wins when more
// than one is set: an active lasso, then points, then legend labels.
type State struct {
	ids       map[chart.Identity]struct{}
	order     []chart.Identity
	lasso     bool
	labels    []string
	observers map[int]func(Event)
	nextObs   int
}

// NewState returns an empty selection.
func NewState() *State {
	return &State{
		ids:       make(map[chart.Identity]struct{}),
		observers: make(map[int]func(Event)),
	}
}

// Subscribe registers fn for every change and returns a function that
// removes it.
func (s *State) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() { delete(s.observers, id) }
}

func (s *State) notify(kind EventKind) {
	ev := Event{Kind: kind, Driver: s.Driver(), HasLasso: s.lasso}
	keys := make([]int, 0, len(s.observers))
	for k := range s.observers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if fn, ok := s.observers[k]; ok {
			fn(ev)
		}
	}
}

// Identities returns the selected identities in selection order.
func (s *State) Identities() []chart.Identity { return slices.Clone(s.order) }

// Has reports whether id is selected.
func (s *State) Has(id chart.Identity) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected identities.
func (s *State) Len() int { return len(s.order) }

// Select replaces the selection with ids, or adds them when multi is set.
func (s *State) Select(ids []chart.Identity, multi bool) {
	if !multi {
		s.reset()
	}
	for _, id := range ids {
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
	s.notify(EventSelected)
}

// Clear empties the identity set. Labels and the lasso flag are untouched.
func (s *State) Clear() {
	s.reset()
	s.notify(EventCleared)
}

func (s *State) reset() {
	clear(s.ids)
	s.order = s.order[:0]
}

// HasLasso reports whether a lasso is active or committed.
func (s *State) HasLasso() bool { return s.lasso }

// SetLasso sets the lasso flag.
func (s *State) SetLasso(on bool) {
	if s.lasso == on {
		return
	}
	s.lasso = on
	s.notify(EventLasso)
}

// Labels returns the selected legend labels in click order.
func (s *State) Labels() []string { return slices.Clone(s.labels) }

// HasLabel reports whether label is selected.
func (s *State) HasLabel(label string) bool { return slices.Contains(s.labels, label) }

// SetLabels replaces the selected legend labels.
func (s *State) SetLabels(labels []string) {
	s.labels = slices.Clone(labels)
	s.notify(EventLabels)
}

// ToggleLabel adds label if absent and removes it otherwise.
func (s *State) ToggleLabel(label string) {
	if i := slices.Index(s.labels, label); i >= 0 {
		s.labels = slices.Delete(s.labels, i, i+1)
	} else {
		s.labels = append(s.labels, label)
	}
	s.notify(EventLabels)
}

// ClearLabels empties the legend label set.
func (s *State) ClearLabels() {
	if len(s.labels) == 0 {
		return
	}
	s.labels = nil
	s.notify(EventLabels)
}

// Driver returns the modality that currently determines opacity.
func (s *State) Driver() Driver {
	switch {
	case s.lasso:
		return DriverLasso
	case len(s.order) > 0:
		return DriverPoints
	case len(s.labels) > 0:
		return DriverLegend
	default:
		return DriverNone
	}
}

// Active reports whether anything is dimmed. A lasso that has not caught
// any point yet leaves every series at the baseline.
func (s *State) Active() bool {
	switch s.Driver() {
	case DriverNone:
		return false
	case DriverLasso:
		return len(s.order) > 0
	default:
		return true
	}
}

// SeriesSelected reports whether a series counts as selected for opacity.
// Under a lasso legend labels are ignored entirely.
func (s *State) SeriesSelected(series *chart.Series) bool {
	switch s.Driver() {
	case DriverLasso, DriverPoints:
		return slices.ContainsFunc(series.Points, func(p *chart.Point) bool { return s.Has(p.Identity) })
	case DriverLegend:
		return s.HasLabel(series.Name)
	default:
		return false
	}
}

// SeriesOpacity returns the opacity of a rendered line.
func (s *State) SeriesOpacity(series *chart.Series) float64 {
	return Opacity(s.SeriesSelected(series), s.Active())
}

// PointOpacity returns the opacity of one marker of a line.
func (s *State) PointOpacity(series *chart.Series, p *chart.Point) float64 {
	switch s.Driver() {
	case DriverLasso, DriverPoints:
		return Opacity(s.Has(p.Identity), s.Active())
	case DriverLegend:
		return Opacity(s.HasLabel(series.Name), true)
	default:
		return DefaultOpacity
	}
}

// LabelSelected reports whether a legend label is highlighted. Under a
// lasso or a point selection a label is highlighted when any of its series
// has a selected point.
func (s *State) LabelSelected(label string, series []*chart.Series) bool {
	switch s.Driver() {
	case DriverLegend:
		return s.HasLabel(label)
	case DriverLasso, DriverPoints:
		for _, sr := range series {
			if sr.Name == label && s.SeriesSelected(sr) {
				return true
			}
		}
	}
	return false
}

// Opacities is the resolved opacity of every rendered line and marker.
type Opacities struct {
	Lines  map[string]float64
	Points map[chart.Identity]float64
}

// Line returns the opacity of the line with the given key, defaulting to
// [DefaultOpacity].
func (o Opacities) Line(key string) float64 {
	if v, ok := o.Lines[key]; ok {
		return v
	}
	return DefaultOpacity
}

// Point returns the opacity of a marker, defaulting to [DefaultOpacity].
func (o Opacities) Point(id chart.Identity) float64 {
	if v, ok := o.Points[id]; ok {
		return v
	}
	return DefaultOpacity
}

// Opacities resolves the opacity of every series and point of m.
func (s *State) Opacities(m *chart.Model) Opacities {
	o := Opacities{
		Lines:  make(map[string]float64),
		Points: make(map[chart.Identity]float64),
	}
	if m == nil {
		return o
	}
	for _, sr := range m.Series {
		o.Lines[sr.Key] = s.SeriesOpacity(sr)
		for _, p := range sr.Points {
			o.Points[p.Identity] = s.PointOpacity(sr, p)
		}
	}
	return o
}
