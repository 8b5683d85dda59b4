// Package handler implements the service's HTTP endpoints: search, reload,
// cache administration, and the root info page. Routing, status codes, and
// the JSON envelope live here; the engine itself knows nothing about HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/auroralabs/aurora-search/internal/analytics"
	"github.com/auroralabs/aurora-search/internal/cache"
	"github.com/auroralabs/aurora-search/internal/search/engine"
	"github.com/auroralabs/aurora-search/internal/source"
	apperrors "github.com/auroralabs/aurora-search/pkg/errors"
	"github.com/auroralabs/aurora-search/pkg/logger"
	"github.com/auroralabs/aurora-search/pkg/metrics"
)

// SearchResponse is the JSON envelope for the search endpoint.
type SearchResponse struct {
	Query   string         `json:"query"`
	Type    string         `json:"type"`
	TookMs  float64        `json:"took_ms"`
	Results *engine.Result `json:"results"`
}

// Config carries the handler's presentation-level settings.
type Config struct {
	AppName      string
	Version      string
	DefaultLimit int
}

// Handler implements the HTTP endpoints.
type Handler struct {
	cfg       Config
	engine    *engine.Engine
	src       source.Source
	cache     *cache.QueryCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a Handler. cache, collector, and m may be nil; the matching
// features are then disabled.
func New(cfg Config, eng *engine.Engine, src source.Source, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		cfg:       cfg,
		engine:    eng,
		src:       src,
		cache:     queryCache,
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=&type=&skip=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.countQuery("validation_error")
		h.badRequest(w, "query parameter 'q' is required")
		return
	}

	filter, ok := engine.ParseFilter(r.URL.Query().Get("type"))
	if !ok {
		h.countQuery("validation_error")
		h.badRequest(w, "invalid type: must be 'messages', 'movies', or 'all'")
		return
	}

	skip := 0
	if v := r.URL.Query().Get("skip"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			h.countQuery("validation_error")
			h.badRequest(w, "skip must be an integer")
			return
		}
		skip = parsed
	}

	limit := h.cfg.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			h.countQuery("validation_error")
			h.badRequest(w, "limit must be an integer")
			return
		}
		limit = parsed
	}

	var result *engine.Result
	var err error
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, filter, skip, limit, func() (*engine.Result, error) {
			return h.engine.Search(query, filter, skip, limit)
		})
	} else {
		result, err = h.engine.Search(query, filter, skip, limit)
	}

	latency := time.Since(start)
	if err != nil {
		h.searchError(w, log, query, err)
		return
	}

	h.recordSearch(ctx, query, filter, result, latency, cacheHit)

	// Results only change on reload, so let edges cache aggressively and
	// revalidate in the background.
	w.Header().Set("Cache-Control", "public, max-age=300, stale-while-revalidate=3600")
	w.Header().Set("CDN-Cache-Control", "public, max-age=300, stale-while-revalidate=3600")

	h.writeJSON(w, http.StatusOK, &SearchResponse{
		Query:   query,
		Type:    string(filter),
		TookMs:  math.Round(float64(latency.Microseconds())/10) / 100,
		Results: result,
	})

	log.Info("search completed",
		"query", query,
		"type", filter,
		"total_hits", result.TotalHits(),
		"returned", result.Returned(),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
}

// Reload handles POST /api/v1/reload: refetch the corpus, rebuild the index,
// and swap it in atomically. On failure the previous index stays live.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	batch, err := h.src.Fetch(ctx)
	if err != nil {
		log.Error("reload fetch failed", "error", err)
		h.buildOutcome("rejected")
		h.writeError(w, apperrors.HTTPStatusCode(err), "failed to fetch records from source")
		return
	}

	if err := h.engine.Load(batch.Messages, batch.Movies); err != nil {
		log.Error("reload build rejected, previous index remains live", "error", err)
		h.buildOutcome("rejected")
		h.writeError(w, apperrors.HTTPStatusCode(err), errorMessage(err))
		return
	}
	h.buildOutcome("ok")
	if h.metrics != nil {
		h.metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
		h.metrics.DocsIndexed.WithLabelValues("messages").Set(float64(len(batch.Messages)))
		h.metrics.DocsIndexed.WithLabelValues("movies").Set(float64(len(batch.Movies)))
	}
	if h.collector != nil {
		h.collector.Track(analytics.BuildEvent{
			Type:       analytics.EventIndexBuild,
			Messages:   len(batch.Messages),
			Movies:     len(batch.Movies),
			DurationMs: time.Since(start).Milliseconds(),
			Timestamp:  time.Now().UTC(),
		})
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			log.Error("cache invalidation after reload failed", "error", err)
		}
	}

	log.Info("index reloaded",
		"messages", len(batch.Messages),
		"movies", len(batch.Movies),
		"duration", time.Since(start),
	)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "reloaded",
		"messages": len(batch.Messages),
		"movies":   len(batch.Movies),
	})
}

// Root handles GET /: service name, version, endpoints, and corpus counts.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	messages, movies := h.engine.Counts()
	info := map[string]any{
		"name":    h.cfg.AppName,
		"version": h.cfg.Version,
		"ready":   h.engine.Ready(),
		"indexed": map[string]int{
			"messages": messages,
			"movies":   movies,
		},
		"endpoints": map[string]string{
			"/api/v1/search":    "search messages and movies",
			"/api/v1/analytics": "search usage statistics",
			"/health/ready":     "readiness probe",
		},
	}
	if builtAt, ok := h.engine.BuiltAt(); ok {
		info["index_built_at"] = builtAt.Format(time.RFC3339)
	}
	h.writeJSON(w, http.StatusOK, info)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) searchError(w http.ResponseWriter, log *slog.Logger, query string, err error) {
	status := apperrors.HTTPStatusCode(err)
	switch {
	case apperrors.IsValidation(err):
		h.countQuery("validation_error")
	case errors.Is(err, apperrors.ErrNotReady):
		h.countQuery("not_ready")
	default:
		h.countQuery("error")
		log.Error("search execution failed", "query", query, "error", err)
	}
	h.writeError(w, status, errorMessage(err))
}

func (h *Handler) recordSearch(ctx context.Context, query string, filter engine.Filter, result *engine.Result, latency time.Duration, cacheHit bool) {
	totalHits := result.TotalHits()
	if totalHits == 0 {
		h.countQuery("zero_result")
	} else {
		h.countQuery("ok")
	}
	if h.metrics != nil {
		cacheStatus := "none"
		if h.cache != nil {
			cacheStatus = "miss"
			if cacheHit {
				cacheStatus = "hit"
			}
			if cacheHit {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		h.metrics.SearchResultsCount.Observe(float64(totalHits))
	}
	if h.collector != nil {
		eventType := analytics.EventSearch
		if h.cache != nil {
			eventType = analytics.EventCacheMiss
			if cacheHit {
				eventType = analytics.EventCacheHit
			}
		}
		h.collector.Track(analytics.SearchEvent{
			Type:      eventType,
			Query:     query,
			Filter:    string(filter),
			TotalHits: totalHits,
			Returned:  result.Returned(),
			LatencyMs: latency.Milliseconds(),
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		})
	}
}

func (h *Handler) countQuery(outcome string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) buildOutcome(status string) {
	if h.metrics != nil {
		h.metrics.IndexBuildsTotal.WithLabelValues(status).Inc()
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	h.writeError(w, http.StatusBadRequest, message)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// errorMessage prefers the AppError message when present; sentinel errors
// read well enough on their own.
func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
