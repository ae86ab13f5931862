package selection

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linevis/pkg/cache"
	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/observability"
)

// Handler is the host's interactivity service as seen by the behaviors.
type Handler interface {
	// HandleSelection selects points, replacing the selection unless multi is set.
	HandleSelection(points []*chart.Point, multi bool)
	// HandleClearSelection drops every selected identity.
	HandleClearSelection()
	// HasSelection reports whether any identity is selected.
	HasSelection() bool
	// ApplySelectionStateToData sets each point's Selected flag from the
	// selection and reports whether anything is selected.
	ApplySelectionStateToData(points []*chart.Point) bool
}

// Store persists the selected identity set between updates and processes.
type Store interface {
	Load(ctx context.Context) ([]chart.Identity, error)
	Save(ctx context.Context, ids []chart.Identity) error
}

// Service is the default [Handler]. It writes through to a [State] and
// keeps the Selected flags of the bound model in sync.
type Service struct {
	state  *State
	store  Store
	logger *log.Logger
	model  *chart.Model
	dirty  bool
}

// Option configures a Service.
type Option func(*Service)

// WithStore persists the identity set through st.
func WithStore(st Store) Option { return func(s *Service) { s.store = st } }

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService returns a Service writing to state.
func NewService(state *State, opts ...Option) *Service {
	s := &Service{
		state:  state,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure Service implements Handler.
var _ Handler = (*Service)(nil)

// State returns the underlying selection state.
func (s *Service) State() *State { return s.state }

// Bind attaches the model whose points receive Selected flags.
func (s *Service) Bind(m *chart.Model) {
	s.model = m
	s.apply()
}

// HandleSelection implements [Handler].
func (s *Service) HandleSelection(points []*chart.Point, multi bool) {
	ids := make([]chart.Identity, 0, len(points))
	for _, p := range points {
		if p != nil {
			ids = append(ids, p.Identity)
		}
	}
	s.state.Select(ids, multi)
	s.dirty = true
	s.apply()
	s.logger.Debug("selection", "points", len(ids), "multi", multi, "driver", s.state.Driver())
	observability.Interaction().OnSelect(s.state.Driver().String(), len(ids))
}

// HandleClearSelection implements [Handler].
func (s *Service) HandleClearSelection() {
	s.state.Clear()
	s.dirty = true
	s.apply()
	s.logger.Debug("selection cleared")
	observability.Interaction().OnClearSelection()
}

// HasSelection implements [Handler].
func (s *Service) HasSelection() bool { return s.state.Len() > 0 }

// ApplySelectionStateToData implements [Handler].
func (s *Service) ApplySelectionStateToData(points []*chart.Point) bool {
	for _, p := range points {
		p.Selected = s.state.Has(p.Identity)
	}
	return s.HasSelection()
}

func (s *Service) apply() {
	if s.model == nil {
		return
	}
	s.ApplySelectionStateToData(s.model.Points())
	s.model.SyncSelected()
}

// Restore loads the persisted identity set into the state.
func (s *Service) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	ids, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		s.state.Select(ids, false)
		s.apply()
	}
	s.dirty = false
	return nil
}

// Persist saves the identity set if it changed since the last save.
func (s *Service) Persist(ctx context.Context) error {
	if s.store == nil || !s.dirty {
		return nil
	}
	if err := s.store.Save(ctx, s.state.Identities()); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// =============================================================================
// Stores
// =============================================================================

// MemoryStore keeps the identity set in memory.
type MemoryStore struct {
	ids []chart.Identity
}

func (m *MemoryStore) Load(context.Context) ([]chart.Identity, error) { return m.ids, nil }

func (m *MemoryStore) Save(_ context.Context, ids []chart.Identity) error {
	m.ids = ids
	return nil
}

// CacheStore persists the identity set in a [cache.Cache] (file or redis).
type CacheStore struct {
	Cache cache.Cache
	Key   string
	TTL   time.Duration
}

type storedSelection struct {
	Identities []chart.Identity `json:"identities"`
	SavedAt    time.Time        `json:"saved_at"`
}

// Load implements [Store]. A missing key is an empty selection.
func (c *CacheStore) Load(ctx context.Context) ([]chart.Identity, error) {
	data, hit, err := c.Cache.Get(ctx, c.Key)
	if err != nil {
		return nil, err
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "selection")
		return nil, nil
	}
	observability.Cache().OnCacheHit(ctx, "selection")
	var stored storedSelection
	if err := json.Unmarshal(data, &stored); err != nil {
		// Corrupt entry - treat as empty
		return nil, nil
	}
	return stored.Identities, nil
}

// Save implements [Store].
func (c *CacheStore) Save(ctx context.Context, ids []chart.Identity) error {
	data, err := json.Marshal(storedSelection{Identities: ids, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl == 0 {
		ttl = cache.TTLSelection
	}
	if err := c.Cache.Set(ctx, c.Key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, "selection", len(data))
	return nil
}
