package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingHooks struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopHTTPHooks
	NoopInteractionHooks
	selects int
}

func (h *countingHooks) OnSelect(string, int) { h.selects++ }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want NoopCacheHooks", Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks", HTTP())
	}
	if _, ok := Interaction().(NoopInteractionHooks); !ok {
		t.Errorf("Interaction() = %T, want NoopInteractionHooks", Interaction())
	}
}

func TestSetters(t *testing.T) {
	defer Reset()
	h := &countingHooks{}

	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetInteractionHooks(h)
	if Pipeline() != PipelineHooks(h) || Cache() != CacheHooks(h) || HTTP() != HTTPHooks(h) {
		t.Fatal("setters did not replace the hooks")
	}

	SetInteractionHooks(nil)
	Interaction().OnSelect("points", 2)
	if h.selects != 1 {
		t.Errorf("selects = %d, want 1 (nil must be ignored)", h.selects)
	}

	Reset()
	Interaction().OnSelect("points", 2)
	if h.selects != 1 {
		t.Errorf("Reset left custom hooks installed")
	}
}

func TestInstallRestores(t *testing.T) {
	Reset()
	h := &countingHooks{}
	SetInteractionHooks(h)

	restore := Install(NewTrace(log.New(&bytes.Buffer{})))
	if _, ok := Pipeline().(*Trace); !ok {
		t.Fatalf("Pipeline() = %T after Install", Pipeline())
	}
	restore()

	if Interaction() != InteractionHooks(h) {
		t.Errorf("restore did not bring back previous interaction hooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("restore did not bring back previous pipeline hooks")
	}
	Reset()
}

func TestTraceLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	restore := Install(NewTrace(logger))
	defer restore()

	ctx := context.Background()
	Pipeline().OnLayoutStart(ctx, "matrix", 4)
	Pipeline().OnRenderComplete(ctx, []string{"svg"}, time.Millisecond, errors.New("boom"))
	Cache().OnCacheHit(ctx, "layout")
	HTTP().OnRequest(ctx, "GET", "/health")
	HTTP().OnResponse(ctx, "GET", "/health", 200, time.Millisecond)
	Interaction().OnLegendClick("North", true)
	Interaction().OnLassoCommit("0_1_", 3)

	out := buf.String()
	for _, want := range []string{
		"layout", "mode=matrix", "cells=4",
		"render done", "error=boom",
		"cache hit", "kind=layout",
		"status=200",
		"legend click", "label=North",
		"lasso commit", "points=3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n"); got != 6 {
		t.Errorf("trace wrote %d lines, want 6 (OnRequest is silent)", got)
	}
}

func TestTraceQuietAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrace(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	tr.OnSelect("lasso", 5)
	tr.OnClearSelection()
	if buf.Len() != 0 {
		t.Errorf("trace logged at info level: %q", buf.String())
	}
}
