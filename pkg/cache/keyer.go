package cache

// Keyer generates cache keys for each stage of the chart pipeline.
type Keyer interface {
	// TableKey identifies a parsed dataset by the hash of its source bytes.
	TableKey(sourceHash string, format string) string
	// LayoutKey identifies a computed layout.
	LayoutKey(modelHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered output.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
	// SelectionKey identifies the persisted selection of one visual.
	SelectionKey(visualID string) string
}

// LayoutKeyOpts are the inputs that change a layout.
type LayoutKeyOpts struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Mode           string  `json:"mode"`
	LegendPosition string  `json:"legend_position"`
	SettingsHash   string  `json:"settings_hash"`
}

// ArtifactKeyOpts are the inputs that change a rendered output.
type ArtifactKeyOpts struct {
	Format        string  `json:"format"`
	SelectionHash string  `json:"selection_hash,omitempty"`
	Popups        bool    `json:"popups"`
	DataLabels    bool    `json:"data_labels"`
	Scale         float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) TableKey(sourceHash, format string) string {
	return hashKey("table", sourceHash, format)
}

func (DefaultKeyer) LayoutKey(modelHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", modelHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

func (DefaultKeyer) SelectionKey(visualID string) string {
	return "selection:" + visualID
}
