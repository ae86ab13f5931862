package cache

// scopedKeyer prepends a fixed prefix to every key of another Keyer.
type scopedKeyer struct {
	Keyer
	prefix string
}

// NewScopedKeyer returns a Keyer whose keys all start with prefix, so that
// several servers or tenants can share one backend. A nil inner keyer means
// the default one.
//
//	keyer := cache.NewScopedKeyer(nil, "staging:")
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return scopedKeyer{Keyer: inner, prefix: prefix}
}

func (k scopedKeyer) TableKey(sourceHash, format string) string {
	return k.prefix + k.Keyer.TableKey(sourceHash, format)
}

func (k scopedKeyer) LayoutKey(modelHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.Keyer.LayoutKey(modelHash, opts)
}

func (k scopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.Keyer.ArtifactKey(layoutHash, opts)
}

func (k scopedKeyer) SelectionKey(visualID string) string {
	return k.prefix + k.Keyer.SelectionKey(visualID)
}
