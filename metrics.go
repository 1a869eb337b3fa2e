package hfabric

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus (see package metrics/prom).
type MetricsCollector interface {
	// RecordOpen is called after each Open.
	RecordOpen(duration time.Duration, err error)

	// RecordGet is called after each record lookup.
	RecordGet(duration time.Duration, err error)

	// RecordSearch is called after each text search.
	// lang is the requested language, results the number of hits.
	RecordSearch(lang string, results int, duration time.Duration, err error)

	// RecordSimilar is called after each similarity query.
	RecordSimilar(results int, duration time.Duration, err error)

	// RecordGraph is called after each narrator graph query. op names the
	// operation ("chain", "rawi", "co_occurring", ...).
	RecordGraph(op string, duration time.Duration, err error)

	// RecordMaterialize is called after the construction of a lazily
	// loaded structure. bytes is the size of the data file read.
	RecordMaterialize(structure string, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)                        {}
func (NoopMetricsCollector) RecordGet(time.Duration, error)                         {}
func (NoopMetricsCollector) RecordSearch(string, int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordSimilar(int, time.Duration, error)                {}
func (NoopMetricsCollector) RecordGraph(string, time.Duration, error)               {}
func (NoopMetricsCollector) RecordMaterialize(string, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount        atomic.Int64
	OpenErrors       atomic.Int64
	GetCount         atomic.Int64
	GetErrors        atomic.Int64
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	SimilarCount     atomic.Int64
	SimilarErrors    atomic.Int64
	SimilarNanos     atomic.Int64
	GraphCount       atomic.Int64
	GraphErrors      atomic.Int64
	MaterializeCount atomic.Int64
	MaterializeBytes atomic.Int64
	MaterializeErrs  atomic.Int64

	mu           sync.Mutex
	materialized map[string]int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(_ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(_ time.Duration, err error) {
	b.GetCount.Add(1)
	if err != nil {
		b.GetErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ string, _ int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordSimilar implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSimilar(_ int, duration time.Duration, err error) {
	b.SimilarCount.Add(1)
	b.SimilarNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SimilarErrors.Add(1)
	}
}

// RecordGraph implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGraph(_ string, _ time.Duration, err error) {
	b.GraphCount.Add(1)
	if err != nil {
		b.GraphErrors.Add(1)
	}
}

// RecordMaterialize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMaterialize(structure string, bytes int64, _ time.Duration, err error) {
	if err != nil {
		b.MaterializeErrs.Add(1)
		return
	}
	b.MaterializeCount.Add(1)
	b.MaterializeBytes.Add(bytes)
	b.mu.Lock()
	if b.materialized == nil {
		b.materialized = make(map[string]int64)
	}
	b.materialized[structure]++
	b.mu.Unlock()
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	b.mu.Lock()
	materialized := make(map[string]int64, len(b.materialized))
	for k, v := range b.materialized {
		materialized[k] = v
	}
	b.mu.Unlock()

	return BasicMetricsStats{
		OpenCount:        b.OpenCount.Load(),
		OpenErrors:       b.OpenErrors.Load(),
		GetCount:         b.GetCount.Load(),
		GetErrors:        b.GetErrors.Load(),
		SearchCount:      b.SearchCount.Load(),
		SearchErrors:     b.SearchErrors.Load(),
		SearchAvgNanos:   avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		SimilarCount:     b.SimilarCount.Load(),
		SimilarErrors:    b.SimilarErrors.Load(),
		SimilarAvgNanos:  avg(b.SimilarNanos.Load(), b.SimilarCount.Load()),
		GraphCount:       b.GraphCount.Load(),
		GraphErrors:      b.GraphErrors.Load(),
		MaterializeCount: b.MaterializeCount.Load(),
		MaterializeBytes: b.MaterializeBytes.Load(),
		MaterializeErrs:  b.MaterializeErrs.Load(),
		Materialized:     materialized,
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
	OpenCount        int64
	OpenErrors       int64
	GetCount         int64
	GetErrors        int64
	SearchCount      int64
	SearchErrors     int64
	SearchAvgNanos   int64
	SimilarCount     int64
	SimilarErrors    int64
	SimilarAvgNanos  int64
	GraphCount       int64
	GraphErrors      int64
	MaterializeCount int64
	MaterializeBytes int64
	MaterializeErrs  int64
	// Materialized counts successful constructions per structure.
	Materialized map[string]int64
}
