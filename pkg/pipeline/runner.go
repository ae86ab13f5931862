package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linevis/pkg/behavior"
	"github.com/matzehuels/linevis/pkg/cache"
	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/dataset"
	"github.com/matzehuels/linevis/pkg/geometry"
	"github.com/matzehuels/linevis/pkg/layout"
	"github.com/matzehuels/linevis/pkg/legend"
	"github.com/matzehuels/linevis/pkg/observability"
	"github.com/matzehuels/linevis/pkg/render"
	"github.com/matzehuels/linevis/pkg/selection"
	"github.com/matzehuels/linevis/pkg/visual"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and HTTP host use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, table chart.Table, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Build
	buildStart := time.Now()
	observability.Pipeline().OnBuildStart(ctx, len(table.Records))
	m, err := chart.Build(table, opts.Settings.FormatFunc())
	observability.Pipeline().OnBuildComplete(ctx, seriesCount(m), time.Since(buildStart), err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Model = m
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.RecordCount = len(table.Records)
	result.Stats.SeriesCount = len(m.Series)
	result.ModelHash = TableHash(table)

	r.Logger.Info("built model",
		"series", len(m.Series),
		"rows", m.Rows(),
		"columns", m.Columns(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	res, layoutHit, err := r.LayoutWithCacheInfo(ctx, m, result.ModelHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.CellCount = len(res.Cells)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"cells", len(res.Cells),
		"legend", res.LegendPosition,
		"scroll", res.Scroll,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, idx, renderHit, err := r.RenderWithCacheInfo(ctx, m, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Index = idx
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// TableHash returns the content hash layouts of table are cached under, or
// "" when the table cannot be serialized.
func TableHash(table chart.Table) string {
	data, err := json.Marshal(table)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func seriesCount(m *chart.Model) int {
	if m == nil {
		return 0
	}
	return len(m.Series)
}

// LoadWithCacheInfo reads a dataset file with caching and returns cache hit
// info. The cache key is the hash of the file contents.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, path string, opts dataset.Options) (chart.Table, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Let the dataset reader produce the coded error.
		t, derr := dataset.ReadFile(path, opts)
		return t, false, derr
	}
	ext := strings.ToLower(filepath.Ext(path))
	keyed, _ := json.Marshal(struct {
		Ext  string
		Opts dataset.Options
	}{ext, opts})
	cacheKey := r.Keyer.TableKey(cache.Hash(data), cache.Hash(keyed))

	if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		var t chart.Table
		if err := json.Unmarshal(cached, &t); err == nil {
			observability.Cache().OnCacheHit(ctx, "table")
			return t, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "table")

	t, err := dataset.ReadFile(path, opts)
	if err != nil {
		return chart.Table{}, false, err
	}
	if encoded, err := json.Marshal(t); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, encoded, cache.TTLTable); err == nil {
			observability.Cache().OnCacheSet(ctx, "table", len(encoded))
		}
	}
	r.Logger.Debug("loaded dataset", "path", path, "records", len(t.Records))
	return t, false, nil
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, path string, opts dataset.Options) (chart.Table, error) {
	t, _, err := r.LoadWithCacheInfo(ctx, path, opts)
	return t, err
}

// LayoutWithCacheInfo computes the layout of m with caching and returns
// cache hit info. modelHash identifies the table m was built from.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, m *chart.Model, modelHash string, opts Options) (layout.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, false, err
	}

	cacheKey := r.Keyer.LayoutKey(modelHash, opts.LayoutKeyOpts())
	if modelHash != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	viewport := geometry.Size{Width: opts.Width, Height: opts.Height}
	mode := string(opts.Settings.SmallMultiples.Mode)
	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, mode, m.Rows()*m.Columns())
	res := visual.Layout(m, legend.EntriesFor(m), opts.Settings, viewport)
	observability.Pipeline().OnLayoutComplete(ctx, mode, time.Since(start), nil)

	if modelHash != "" {
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}
	return res, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. The geometry index is always rebuilt; it is cheap compared to
// raster conversion.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *chart.Model, res layout.Result, opts Options) (map[string][]byte, *geometry.Index, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, nil, false, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, nil, false, err
	}

	svgOpts := r.svgOptions(m, opts)
	svg, idx := render.RenderSVG(m, res, svgOpts...)

	layoutData, err := json.Marshal(res)
	if err != nil {
		return nil, nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(append(layoutData, svg...))

	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, idx, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := renderFormats(ctx, m, res, idx, svg, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, nil, false, err
	}

	for format, data := range rendered {
		if err := r.Cache.Set(ctx, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, idx, false, nil
}

// svgOptions resolves the selection in opts into render options.
func (r *Runner) svgOptions(m *chart.Model, opts Options) []render.SVGOption {
	out := []render.SVGOption{render.WithSettings(opts.Settings)}
	if len(opts.Selection) > 0 || len(opts.Labels) > 0 {
		state := selection.NewState()
		svc := selection.NewService(state, selection.WithLogger(opts.Logger))
		lg := behavior.NewLegend(state, svc, behavior.WithLogger(opts.Logger))
		defer lg.Close()
		lg.Bind(m, legend.EntriesFor(m))
		if len(opts.Labels) > 0 {
			state.SetLabels(opts.Labels)
		}
		if len(opts.Selection) > 0 {
			state.Select(opts.Selection, false)
		}
		svc.Bind(m)
		out = append(out,
			render.WithOpacity(state.Opacities(m)),
			render.WithLegendIcons(lg.Icons()),
		)
	}
	if opts.Popups {
		out = append(out, render.WithPopups())
	}
	if opts.DataLabels {
		out = append(out, render.WithDataLabels())
	}
	if opts.Interactive {
		out = append(out, render.WithInteraction())
	}
	return out
}

func renderFormats(ctx context.Context, m *chart.Model, res layout.Result, idx *geometry.Index, svg []byte, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = svg
		case FormatPNG:
			data, err = render.ToPNG(ctx, svg, opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svg)
		case FormatJSON:
			data, err = render.RenderJSON(m, res, idx)
		default:
			err = fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
