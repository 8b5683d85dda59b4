package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/auroralabs/aurora-search/pkg/kafka"
)

// Collector accumulates analytics events and flushes them to Kafka in bulk,
// either when the batch reaches batchSize or after flushInterval, whichever
// comes first. Publish failures are logged and the batch is dropped; search
// traffic never fails because analytics did.
type Collector struct {
	producer      *kafka.Producer
	mu            sync.Mutex
	buffer        []kafka.Event
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}
	stopOnce      sync.Once
}

// NewCollector creates a Collector with the given batching parameters.
func NewCollector(producer *kafka.Producer, batchSize int, flushInterval time.Duration) *Collector {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Collector{
		producer:      producer,
		buffer:        make([]kafka.Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start launches the periodic flush loop.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.flush(ctx)
			case <-ctx.Done():
				c.flush(context.Background())
				return
			case <-c.done:
				c.flush(context.Background())
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track enqueues an event, triggering an immediate flush when the batch is
// full.
func (c *Collector) Track(event any) {
	c.mu.Lock()
	c.buffer = append(c.buffer, kafka.Event{Key: "analytics", Value: event})
	full := len(c.buffer) >= c.batchSize
	c.mu.Unlock()
	if full {
		c.flush(context.Background())
	}
}

// Close flushes any buffered events and stops the flush loop.
func (c *Collector) Close() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

func (c *Collector) flush(ctx context.Context) {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]kafka.Event, 0, c.batchSize)
	c.mu.Unlock()

	if err := c.producer.PublishBatch(ctx, batch); err != nil {
		c.logger.Error("failed to publish analytics batch", "count", len(batch), "error", err)
	}
}
