package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auroralabs/aurora-search/internal/search/engine"
	"github.com/auroralabs/aurora-search/internal/search/store"
	"github.com/auroralabs/aurora-search/internal/server/handler"
	"github.com/auroralabs/aurora-search/internal/source"
	"github.com/auroralabs/aurora-search/pkg/health"
)

type staticSource struct{}

func (staticSource) Fetch(ctx context.Context) (*source.Batch, error) {
	return &source.Batch{
		Messages: []store.Message{{ID: "1", UserName: "alice", Text: "pizza"}},
	}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	eng := engine.New(engine.Config{MinTokenLength: 1, MaxQueryLength: 100, MaxLimit: 100})
	if err := eng.Load([]store.Message{{ID: "1", UserName: "alice", Text: "pizza"}}, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	h := handler.New(handler.Config{AppName: "aurora-search", Version: "test", DefaultLimit: 10}, eng, staticSource{}, nil, nil, nil)

	checker := health.NewChecker()
	checker.Register("search_engine", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{Status: health.StatusUp}
	})
	return New(h, checker, Options{})
}

func TestRoutes(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/v1/search?q=pizza", http.StatusOK},
		{http.MethodGet, "/api/v1/cache/stats", http.StatusOK},
		{http.MethodPost, "/api/v1/reload", http.StatusOK},
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodPost, "/api/v1/search?q=pizza", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/reload", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nope", http.StatusNotFound},
		// Analytics route is absent when the pipeline is disabled.
		{http.MethodGet, "/api/v1/analytics", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.target, rec.Code, tt.want)
		}
	}
}

func TestRequestIDAssigned(t *testing.T) {
	r := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=pizza", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=pizza", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "caller-supplied" {
		t.Errorf("X-Request-ID = %q, want caller-supplied id propagated", got)
	}
}
