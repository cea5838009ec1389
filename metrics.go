package ansel

import (
	"sync/atomic"
	"time"

	"github.com/fkoehler/ansel/model"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// MetricsCollector is a superset of the tile cache's Metrics interface, so a
// single collector observes the whole engine.
type MetricsCollector interface {
	// RecordFilter is called after each filter evaluation.
	// matched is the size of the filtered sequence, duration the time taken.
	RecordFilter(duration time.Duration, matched int)

	// RecordLayout is called after each layout computation.
	RecordLayout(count int, duration time.Duration)

	// RecordTileFetch is called after each tile fetch completes.
	// err is nil if the fetch succeeded.
	RecordTileFetch(tier model.Tier, duration time.Duration, err error)

	// RecordTileHit is called when a requested tile is already loaded.
	RecordTileHit()

	// RecordTileMiss is called when a requested tile needs a fetch.
	RecordTileMiss()

	// RecordStaleDrop is called when a completed fetch is withheld from its
	// caller because the result is no longer relevant.
	RecordStaleDrop()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFilter(time.Duration, int)                  {}
func (NoopMetricsCollector) RecordLayout(int, time.Duration)                  {}
func (NoopMetricsCollector) RecordTileFetch(model.Tier, time.Duration, error) {}
func (NoopMetricsCollector) RecordTileHit()                                   {}
func (NoopMetricsCollector) RecordTileMiss()                                  {}
func (NoopMetricsCollector) RecordStaleDrop()                                 {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FilterCount      atomic.Int64
	FilterTotalNanos atomic.Int64
	LayoutCount      atomic.Int64
	LayoutTotalNanos atomic.Int64
	FetchCount       atomic.Int64
	FetchErrors      atomic.Int64
	FetchTotalNanos  atomic.Int64
	TileHits         atomic.Int64
	TileMisses       atomic.Int64
	StaleDrops       atomic.Int64
}

// RecordFilter implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFilter(duration time.Duration, matched int) {
	b.FilterCount.Add(1)
	b.FilterTotalNanos.Add(duration.Nanoseconds())
}

// RecordLayout implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLayout(count int, duration time.Duration) {
	b.LayoutCount.Add(1)
	b.LayoutTotalNanos.Add(duration.Nanoseconds())
}

// RecordTileFetch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTileFetch(tier model.Tier, duration time.Duration, err error) {
	b.FetchCount.Add(1)
	b.FetchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FetchErrors.Add(1)
	}
}

// RecordTileHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTileHit() {
	b.TileHits.Add(1)
}

// RecordTileMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTileMiss() {
	b.TileMisses.Add(1)
}

// RecordStaleDrop implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStaleDrop() {
	b.StaleDrops.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FilterCount:    b.FilterCount.Load(),
		FilterAvgNanos: avg(b.FilterTotalNanos.Load(), b.FilterCount.Load()),
		LayoutCount:    b.LayoutCount.Load(),
		LayoutAvgNanos: avg(b.LayoutTotalNanos.Load(), b.LayoutCount.Load()),
		FetchCount:     b.FetchCount.Load(),
		FetchErrors:    b.FetchErrors.Load(),
		FetchAvgNanos:  avg(b.FetchTotalNanos.Load(), b.FetchCount.Load()),
		TileHits:       b.TileHits.Load(),
		TileMisses:     b.TileMisses.Load(),
		StaleDrops:     b.StaleDrops.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FilterCount    int64
	FilterAvgNanos int64
	LayoutCount    int64
	LayoutAvgNanos int64
	FetchCount     int64
	FetchErrors    int64
	FetchAvgNanos  int64
	TileHits       int64
	TileMisses     int64
	StaleDrops     int64
}
