// Package analytics tracks search usage. A Collector batches query events to
// Kafka; an Aggregator consumes the topic and serves rolling statistics (top
// queries, zero-result queries, latency percentiles). Both are optional at
// runtime: when Kafka is not configured the service simply does not track.
package analytics

import "time"

// EventType tags an analytics event.
type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventIndexBuild EventType = "index_build"
)

// SearchEvent describes one executed query.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Filter    string    `json:"filter"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// BuildEvent describes one index build.
type BuildEvent struct {
	Type       EventType `json:"type"`
	Messages   int       `json:"messages"`
	Movies     int       `json:"movies"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
