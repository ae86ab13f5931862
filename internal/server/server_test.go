package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/linevis/pkg/cache"
	"github.com/matzehuels/linevis/pkg/chart"
	"github.com/matzehuels/linevis/pkg/dataset"
	"github.com/matzehuels/linevis/pkg/errors"
	"github.com/matzehuels/linevis/pkg/layout"
	"github.com/matzehuels/linevis/pkg/visual"
)

func regionRecords() []dataset.DocumentRecord {
	var recs []dataset.DocumentRecord
	add := func(row, series string, values ...float64) {
		for i, v := range values {
			recs = append(recs, dataset.DocumentRecord{
				Category: []string{"2020", "2021", "2022"}[i],
				Series:   series,
				Row:      row,
				Value:    v,
			})
		}
	}
	add("East", "Sales", 12, 17, 23)
	add("East", "Costs", 11, 13, 14)
	add("West", "Sales", 21, 19, 16)
	add("West", "Costs", 12, 14, 18)
	return recs
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// create opens a session loaded with the region dataset.
func create(t *testing.T, s *Server, id string) string {
	t.Helper()
	rec := do(t, s.Handler(), http.MethodPost, "/api/visuals/", createRequest{
		ID:   id,
		Data: &dataRequest{Width: 800, Height: 500, Title: "Regions", Records: regionRecords()},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	return decode[createResponse](t, rec).ID
}

func TestHealthz(t *testing.T) {
	s := New(Config{}, nil, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body)
	}
}

func TestCreateWithoutData(t *testing.T) {
	s := New(Config{}, nil, nil)
	rec := do(t, s.Handler(), http.MethodPost, "/api/visuals/", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	id := decode[createResponse](t, rec).ID
	if id == "" {
		t.Fatal("empty id")
	}

	rec = do(t, s.Handler(), http.MethodGet, "/api/visuals/"+id+"/chart.svg", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("chart before data = %d, want 409", rec.Code)
	}

	rec = do(t, s.Handler(), http.MethodPut, "/api/visuals/"+id+"/data", dataRequest{Records: regionRecords()})
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body)
	}
	rec = do(t, s.Handler(), http.MethodGet, "/api/visuals/"+id+"/chart.svg", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/svg+xml" {
		t.Errorf("chart = %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "CustomEvent") {
		t.Error("chart should embed the event forwarding script")
	}
}

func TestCreateErrors(t *testing.T) {
	s := New(Config{}, nil, nil)
	tests := []struct {
		name string
		body any
		want int
	}{
		{"bad id", createRequest{ID: "not-a-uuid"}, http.StatusBadRequest},
		{"unknown field", map[string]any{"nope": 1}, http.StatusBadRequest},
		{"bad viewport", createRequest{Data: &dataRequest{Width: -5, Records: regionRecords()}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/api/visuals/", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestUnknownSession(t *testing.T) {
	s := New(Config{}, nil, nil)
	for _, path := range []string{"/selection", "/tooltip", "/layout", "/chart.svg"} {
		rec := do(t, s.Handler(), http.MethodGet, "/api/visuals/00000000-0000-0000-0000-000000000000"+path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s = %d, want 404", path, rec.Code)
		}
	}
}

func TestEvents(t *testing.T) {
	s := New(Config{}, nil, nil)
	id := create(t, s, "")
	base := "/api/visuals/" + id

	rec := do(t, s.Handler(), http.MethodPost, base+"/events", []event{
		{Kind: "line", Key: chart.LineKey(0, 0, "Sales")},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("events = %d: %s", rec.Code, rec.Body)
	}
	snap := decode[visual.Snapshot](t, rec)
	if len(snap.Selected) != 3 {
		t.Errorf("selected = %d, want 3", len(snap.Selected))
	}

	rec = do(t, s.Handler(), http.MethodPost, base+"/events", []event{
		{Kind: "legend", Label: "Costs"},
	})
	snap = decode[visual.Snapshot](t, rec)
	if snap.Driver != "legend" || len(snap.Labels) != 1 || snap.Labels[0] != "Costs" {
		t.Errorf("after legend click = %+v", snap)
	}

	rec = do(t, s.Handler(), http.MethodPost, base+"/events", []event{{Kind: "clear"}})
	snap = decode[visual.Snapshot](t, rec)
	if snap.Driver != "none" {
		t.Errorf("driver after clear = %s", snap.Driver)
	}
}

func TestEventErrors(t *testing.T) {
	s := New(Config{}, nil, nil)
	id := create(t, s, "")
	tests := []struct {
		name string
		ev   event
	}{
		{"unknown kind", event{Kind: "wiggle"}},
		{"unknown line", event{Kind: "line", Key: "9_9_Nope"}},
		{"bad resize", event{Kind: "resize", Width: -1, Height: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/api/visuals/"+id+"/events", []event{tt.ev})
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestEventBatchStopsAtFailure(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{}, c, nil)
	id := create(t, s, "")

	rec := do(t, s.Handler(), http.MethodPost, "/api/visuals/"+id+"/events", []event{
		{Kind: "line", Key: chart.LineKey(0, 0, "Sales")},
		{Kind: "wiggle"},
		{Kind: "clear"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}
	got := decode[eventError](t, rec)
	if got.Code != string(errors.ErrCodeInvalidEvent) || got.Applied != 1 {
		t.Errorf("code = %s applied = %d", got.Code, got.Applied)
	}
	if len(got.Selection.Selected) != 3 {
		t.Errorf("selection in error = %d points, want 3", len(got.Selection.Selected))
	}

	// The applied prefix was persisted.
	s2 := New(Config{}, c, nil)
	create(t, s2, id)
	snap := decode[visual.Snapshot](t, do(t, s2.Handler(), http.MethodGet, "/api/visuals/"+id+"/selection", nil))
	if len(snap.Selected) != 3 {
		t.Errorf("persisted selected = %d, want 3", len(snap.Selected))
	}
}

func TestLassoAndLayout(t *testing.T) {
	s := New(Config{}, nil, nil)
	id := create(t, s, "")
	base := "/api/visuals/" + id

	res := decode[layout.Result](t, do(t, s.Handler(), http.MethodGet, base+"/layout", nil))
	if !res.Active || len(res.Cells) != 2 {
		t.Fatalf("layout = %+v", res)
	}
	b := res.Cells[0].PlotBounds()

	rec := do(t, s.Handler(), http.MethodPost, base+"/events", []event{
		{Kind: "mousedown", X: b.Right - 1, Y: b.Bottom - 1},
		{Kind: "mousemove", X: -1000, Y: -1000},
		{Kind: "mouseup", X: -1000, Y: -1000},
	})
	snap := decode[visual.Snapshot](t, rec)
	if snap.Driver != "lasso" || len(snap.Selected) != 6 {
		t.Errorf("lasso: driver=%s selected=%d", snap.Driver, len(snap.Selected))
	}

	rec = do(t, s.Handler(), http.MethodPost, base+"/events", []event{{Kind: "resize", Width: 500, Height: 400}})
	snap = decode[visual.Snapshot](t, rec)
	if len(snap.Selected) != 6 {
		t.Errorf("selection after resize = %d, want 6", len(snap.Selected))
	}
}

func TestTooltip(t *testing.T) {
	s := New(Config{}, nil, nil)
	id := create(t, s, "")
	base := "/api/visuals/" + id

	res := decode[layout.Result](t, do(t, s.Handler(), http.MethodGet, base+"/layout", nil))
	b := res.Cells[0].PlotBounds()
	do(t, s.Handler(), http.MethodPost, base+"/events", []event{
		{Kind: "hover", X: b.Left + 1, Y: (b.Top + b.Bottom) / 2},
	})

	tip := decode[tooltipResponse](t, do(t, s.Handler(), http.MethodGet, base+"/tooltip", nil))
	if len(tip.Items) == 0 {
		t.Fatal("hover over the first category should produce a tooltip")
	}
}

func TestSelectionPersistsAcrossSessions(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := New(Config{}, c, nil)
	id := create(t, s, "")

	do(t, s.Handler(), http.MethodPost, "/api/visuals/"+id+"/events", []event{
		{Kind: "line", Key: chart.LineKey(1, 0, "Costs")},
	})
	rec := do(t, s.Handler(), http.MethodDelete, "/api/visuals/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}

	// A new server over the same cache resumes the selection.
	s2 := New(Config{}, c, nil)
	create(t, s2, id)
	snap := decode[visual.Snapshot](t, do(t, s2.Handler(), http.MethodGet, "/api/visuals/"+id+"/selection", nil))
	if len(snap.Selected) != 3 {
		t.Fatalf("restored selected = %d, want 3", len(snap.Selected))
	}
	for _, p := range snap.Selected {
		if p.Series != "Costs" || p.Row != 1 {
			t.Errorf("restored point %+v", p)
		}
	}
}

func TestEvict(t *testing.T) {
	s := New(Config{SessionTTL: time.Minute}, nil, nil)
	id := create(t, s, "")
	if n := s.Evict(context.Background(), time.Now()); n != 0 {
		t.Errorf("evicted %d fresh sessions", n)
	}
	if n := s.Evict(context.Background(), time.Now().Add(2*time.Minute)); n != 1 {
		t.Errorf("evicted %d, want 1", n)
	}
	rec := do(t, s.Handler(), http.MethodGet, "/api/visuals/"+id+"/selection", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("evicted session status = %d", rec.Code)
	}
}

func TestUpdateFromDataDir(t *testing.T) {
	dir := t.TempDir()
	csv := "category,series,value\n2020,Sales,12\n2021,Sales,17\n2020,Costs,11\n2021,Costs,13\n"
	if err := os.WriteFile(filepath.Join(dir, "sales.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		dataDir string
		query   string
		want    int
	}{
		{"loads file", dir, "?file=sales.csv&width=640&height=480", http.StatusOK},
		{"traversal", dir, "?file=../sales.csv", http.StatusBadRequest},
		{"absolute", dir, "?file=/etc/passwd", http.StatusBadRequest},
		{"missing", dir, "?file=other.csv", http.StatusNotFound},
		{"bad width", dir, "?file=sales.csv&width=wide", http.StatusBadRequest},
		{"no data dir", "", "?file=sales.csv", http.StatusNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{DataDir: tt.dataDir}, nil, nil)
			rec := do(t, s.Handler(), http.MethodPost, "/api/visuals/", nil)
			id := decode[createResponse](t, rec).ID

			rec = do(t, s.Handler(), http.MethodPut, "/api/visuals/"+id+"/data"+tt.query, nil)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			if tt.want != http.StatusOK {
				return
			}
			rec = do(t, s.Handler(), http.MethodGet, "/api/visuals/"+id+"/layout", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("layout = %d", rec.Code)
			}
		})
	}
}

func TestNamespaceScopesSelectionKeys(t *testing.T) {
	id := "5f0c1a34-8d57-4d8e-9f56-0b1c6a7e2d11"
	for ns, want := range map[string]string{
		"":        "selection:" + id,
		"staging": "staging:selection:" + id,
	} {
		s := New(Config{Namespace: ns}, nil, nil)
		if got := s.keyer.SelectionKey(id); got != want {
			t.Errorf("namespace %q: SelectionKey = %q, want %q", ns, got, want)
		}
	}
}
