package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// Trace logs every hook at debug level. The CLI installs it with --verbose.
type Trace struct {
	logger *log.Logger
}

// NewTrace returns a [Trace] writing to logger.
func NewTrace(logger *log.Logger) *Trace { return &Trace{logger: logger} }

func (t *Trace) done(msg string, d time.Duration, err error, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", d.Round(time.Microsecond))
	if err != nil {
		t.logger.Debug(msg, append(keyvals, "error", err)...)
		return
	}
	t.logger.Debug(msg, keyvals...)
}

func (t *Trace) OnBuildStart(_ context.Context, records int) {
	t.logger.Debug("build", "records", records)
}

func (t *Trace) OnBuildComplete(_ context.Context, series int, d time.Duration, err error) {
	t.done("build done", d, err, "series", series)
}

func (t *Trace) OnLayoutStart(_ context.Context, mode string, cells int) {
	t.logger.Debug("layout", "mode", mode, "cells", cells)
}

func (t *Trace) OnLayoutComplete(_ context.Context, mode string, d time.Duration, err error) {
	t.done("layout done", d, err, "mode", mode)
}

func (t *Trace) OnRenderStart(_ context.Context, formats []string) {
	t.logger.Debug("render", "formats", formats)
}

func (t *Trace) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	t.done("render done", d, err, "formats", formats)
}

func (t *Trace) OnCacheHit(_ context.Context, kind string) {
	t.logger.Debug("cache hit", "kind", kind)
}

func (t *Trace) OnCacheMiss(_ context.Context, kind string) {
	t.logger.Debug("cache miss", "kind", kind)
}

func (t *Trace) OnCacheSet(_ context.Context, kind string, size int) {
	t.logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (t *Trace) OnRequest(context.Context, string, string) {}

func (t *Trace) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	t.done("http", d, nil, "method", method, "path", path, "status", status)
}

func (t *Trace) OnSelect(driver string, points int) {
	t.logger.Debug("select", "driver", driver, "points", points)
}

func (t *Trace) OnClearSelection() { t.logger.Debug("clear selection") }

func (t *Trace) OnLegendClick(label string, multi bool) {
	t.logger.Debug("legend click", "label", label, "multi", multi)
}

func (t *Trace) OnLassoStart(cellKey string) { t.logger.Debug("lasso start", "cell", cellKey) }

func (t *Trace) OnLassoCommit(cellKey string, points int) {
	t.logger.Debug("lasso commit", "cell", cellKey, "points", points)
}

func (t *Trace) OnLassoCancel(cellKey string) { t.logger.Debug("lasso cancel", "cell", cellKey) }

var _ All = (*Trace)(nil)
