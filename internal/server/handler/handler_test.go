package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auroralabs/aurora-search/internal/search/engine"
	"github.com/auroralabs/aurora-search/internal/search/store"
	"github.com/auroralabs/aurora-search/internal/source"
)

type fakeSource struct {
	batch *source.Batch
	err   error
	calls int
}

func (f *fakeSource) Fetch(ctx context.Context) (*source.Batch, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.New(engine.Config{MinTokenLength: 1, MaxQueryLength: 100, MaxLimit: 100})
	err := eng.Load(
		[]store.Message{
			{ID: "1", UserName: "alice", Text: "Let's order pizza tonight"},
			{ID: "2", UserName: "bob", Text: "Paris is lovely"},
			{ID: "3", UserName: "carol", Text: "pizza and movies"},
		},
		[]store.Movie{
			{ID: "m1", Title: "Mystic Pizza", Description: "three sisters in a pizzeria"},
		},
	)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return eng
}

func testHandler(t *testing.T, eng *engine.Engine, src source.Source) *Handler {
	t.Helper()
	if src == nil {
		src = &fakeSource{}
	}
	return New(Config{AppName: "aurora-search", Version: "test", DefaultLimit: 10}, eng, src, nil, nil, nil)
}

func doSearch(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	h := testHandler(t, testEngine(t), nil)

	rec := doSearch(t, h, "/api/v1/search?q=pizza&type=messages")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got == "" {
		t.Error("Cache-Control header missing")
	}

	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Query != "pizza" || resp.Type != "messages" {
		t.Errorf("envelope = %q/%q, want pizza/messages", resp.Query, resp.Type)
	}
	if resp.Results == nil || resp.Results.Messages == nil {
		t.Fatal("results.messages missing")
	}
	if resp.Results.Messages.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Results.Messages.Total)
	}
	if resp.Results.Movies != nil {
		t.Error("movies page present for type=messages")
	}
}

func TestSearchDefaultsToAllTypes(t *testing.T) {
	h := testHandler(t, testEngine(t), nil)

	rec := doSearch(t, h, "/api/v1/search?q=pizza")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Type != "all" {
		t.Errorf("type = %q, want all", resp.Type)
	}
	if resp.Results.Messages == nil || resp.Results.Movies == nil {
		t.Error("both type pages expected for default filter")
	}
}

func TestSearchValidationFailures(t *testing.T) {
	h := testHandler(t, testEngine(t), nil)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing q", "/api/v1/search", http.StatusBadRequest},
		{"blank q", "/api/v1/search?q=%20%20", http.StatusBadRequest},
		{"unknown type", "/api/v1/search?q=pizza&type=books", http.StatusBadRequest},
		{"non-numeric skip", "/api/v1/search?q=pizza&skip=abc", http.StatusBadRequest},
		{"non-numeric limit", "/api/v1/search?q=pizza&limit=ten", http.StatusBadRequest},
		{"negative skip", "/api/v1/search?q=pizza&skip=-1", http.StatusBadRequest},
		{"zero limit", "/api/v1/search?q=pizza&limit=0", http.StatusBadRequest},
		{"limit above max", "/api/v1/search?q=pizza&limit=500", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doSearch(t, h, tt.target)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("error message missing from body")
			}
		})
	}
}

func TestSearchBeforeFirstLoad(t *testing.T) {
	eng := engine.New(engine.Config{MinTokenLength: 1, MaxQueryLength: 100, MaxLimit: 100})
	h := testHandler(t, eng, nil)

	rec := doSearch(t, h, "/api/v1/search?q=pizza")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestReload(t *testing.T) {
	eng := testEngine(t)
	src := &fakeSource{batch: &source.Batch{
		Messages: []store.Message{{ID: "9", UserName: "dave", Text: "fresh corpus"}},
	}}
	h := testHandler(t, eng, src)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	rec := httptest.NewRecorder()
	h.Reload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if src.calls != 1 {
		t.Errorf("source fetched %d times, want 1", src.calls)
	}
	messages, movies := eng.Counts()
	if messages != 1 || movies != 0 {
		t.Errorf("Counts after reload = (%d, %d), want (1, 0)", messages, movies)
	}
}

func TestReloadFetchFailure(t *testing.T) {
	eng := testEngine(t)
	h := testHandler(t, eng, &fakeSource{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	rec := httptest.NewRecorder()
	h.Reload(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	// The previous corpus must survive a failed reload.
	messages, _ := eng.Counts()
	if messages != 3 {
		t.Errorf("messages = %d after failed reload, want 3", messages)
	}
}

func TestReloadEmptyBatchRejected(t *testing.T) {
	eng := testEngine(t)
	h := testHandler(t, eng, &fakeSource{batch: &source.Batch{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	rec := httptest.NewRecorder()
	h.Reload(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}
	messages, _ := eng.Counts()
	if messages != 3 {
		t.Errorf("messages = %d after rejected reload, want 3", messages)
	}
}

func TestRoot(t *testing.T) {
	h := testHandler(t, testEngine(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Root(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["name"] != "aurora-search" {
		t.Errorf("name = %v, want aurora-search", body["name"])
	}
	if body["ready"] != true {
		t.Errorf("ready = %v, want true", body["ready"])
	}
}

func TestCacheEndpointsWithoutCache(t *testing.T) {
	h := testHandler(t, testEngine(t), nil)

	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("CacheStats status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "disabled" {
		t.Errorf("status = %q, want disabled", body["status"])
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("CacheInvalidate status = %d, want 503", rec.Code)
	}
}
