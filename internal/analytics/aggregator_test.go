package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/auroralabs/aurora-search/pkg/config"
)

func testKafkaConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:         []string{"localhost:9092"},
		ConsumerGroup:   "test",
		AnalyticsEvents: "test-events",
	}
}

func feed(t *testing.T, agg *Aggregator, event any) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := HandleEvent(agg)(context.Background(), nil, data); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator(testKafkaConfig())

	feed(t, agg, SearchEvent{Type: EventCacheMiss, Query: "pizza", TotalHits: 3, LatencyMs: 10, Timestamp: time.Now()})
	feed(t, agg, SearchEvent{Type: EventCacheHit, Query: "pizza", TotalHits: 3, LatencyMs: 1, CacheHit: true, Timestamp: time.Now()})
	feed(t, agg, SearchEvent{Type: EventCacheMiss, Query: "zebra", TotalHits: 0, LatencyMs: 5, Timestamp: time.Now()})
	feed(t, agg, BuildEvent{Type: EventIndexBuild, Messages: 100, Movies: 20, Timestamp: time.Now()})

	stats := agg.Stats()
	if stats.TotalSearches != 3 {
		t.Errorf("TotalSearches = %d, want 3", stats.TotalSearches)
	}
	if stats.TotalBuilds != 1 {
		t.Errorf("TotalBuilds = %d, want 1", stats.TotalBuilds)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}

	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "pizza" {
		t.Errorf("TopQueries = %v, want pizza first", stats.TopQueries)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "zebra" {
		t.Errorf("ZeroResultQueries = %v, want [zebra]", stats.ZeroResultQueries)
	}
	if stats.AvgLatencyMs == 0 {
		t.Error("AvgLatencyMs not computed")
	}
}

func TestHandleEventIgnoresGarbage(t *testing.T) {
	agg := NewAggregator(testKafkaConfig())
	if err := HandleEvent(agg)(context.Background(), nil, []byte("not json")); err != nil {
		t.Errorf("garbage payload returned error: %v", err)
	}
	if stats := agg.Stats(); stats.TotalSearches != 0 || stats.TotalBuilds != 0 {
		t.Error("garbage payload recorded as an event")
	}
}
