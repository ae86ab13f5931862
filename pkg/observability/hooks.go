// Package observability lets a host observe linevis without the libraries
// depending on a metrics or tracing backend.
//
// Four hook sets cover the pipeline stages, the cache, the HTTP host and
// user interactions with a visual. Each starts as a no-op and is replaced at
// startup:
//
//	restore := observability.Install(observability.NewTrace(logger))
//	defer restore()
//
// Libraries call the current hooks inline:
//
//	observability.Pipeline().OnLayoutStart(ctx, "flow", cells)
//	observability.Interaction().OnLassoCommit(cellKey, len(points))
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives the stages of a pipeline run.
type PipelineHooks interface {
	OnBuildStart(ctx context.Context, records int)
	OnBuildComplete(ctx context.Context, series int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, mode string, cells int)
	OnLayoutComplete(ctx context.Context, mode string, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups. kind is "table", "layout", "artifact"
// or "selection".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// HTTPHooks receives the requests served by the HTTP host.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, status int, duration time.Duration)
}

// InteractionHooks receives selection and lasso events. They fire inside a
// single synchronous event callback, so no context is passed.
type InteractionHooks interface {
	OnSelect(driver string, points int)
	OnClearSelection()
	OnLegendClick(label string, multi bool)
	OnLassoStart(cellKey string)
	OnLassoCommit(cellKey string, points int)
	OnLassoCancel(cellKey string)
}

type (
	NoopPipelineHooks    struct{}
	NoopCacheHooks       struct{}
	NoopHTTPHooks        struct{}
	NoopInteractionHooks struct{}
)

func (NoopPipelineHooks) OnBuildStart(context.Context, int)                                {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, int, time.Duration, error)       {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                       {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)   {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

func (NoopInteractionHooks) OnSelect(string, int)       {}
func (NoopInteractionHooks) OnClearSelection()          {}
func (NoopInteractionHooks) OnLegendClick(string, bool) {}
func (NoopInteractionHooks) OnLassoStart(string)        {}
func (NoopInteractionHooks) OnLassoCommit(string, int)  {}
func (NoopInteractionHooks) OnLassoCancel(string)       {}

// hooks is the set in effect.
type hooks struct {
	pipeline    PipelineHooks
	cache       CacheHooks
	http        HTTPHooks
	interaction InteractionHooks
}

func noop() hooks {
	return hooks{NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}, NoopInteractionHooks{}}
}

var (
	mu      sync.RWMutex
	current = noop()
)

func set(f func(*hooks)) {
	mu.Lock()
	defer mu.Unlock()
	f(&current)
}

func get() hooks {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetPipelineHooks replaces the pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		set(func(c *hooks) { c.pipeline = h })
	}
}

// SetCacheHooks replaces the cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		set(func(c *hooks) { c.cache = h })
	}
}

// SetHTTPHooks replaces the HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		set(func(c *hooks) { c.http = h })
	}
}

// SetInteractionHooks replaces the interaction hooks. Nil is ignored.
func SetInteractionHooks(h InteractionHooks) {
	if h != nil {
		set(func(c *hooks) { c.interaction = h })
	}
}

// All implements every hook set.
type All interface {
	PipelineHooks
	CacheHooks
	HTTPHooks
	InteractionHooks
}

// Install registers h for every hook set and returns a function that
// restores the previous hooks.
func Install(h All) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := current
	current = hooks{h, h, h, h}
	return func() {
		mu.Lock()
		defer mu.Unlock()
		current = prev
	}
}

func Pipeline() PipelineHooks       { return get().pipeline }
func Cache() CacheHooks             { return get().cache }
func HTTP() HTTPHooks               { return get().http }
func Interaction() InteractionHooks { return get().interaction }

// Reset restores the no-op hooks.
func Reset() { set(func(c *hooks) { *c = noop() }) }
