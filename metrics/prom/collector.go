package prom

import (
	"time"

	"github.com/hupe1980/hfabric"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "hfabric"

// Collector implements hfabric.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency     *prometheus.HistogramVec
	searchResults *prometheus.HistogramVec
	materialized  *prometheus.CounterVec
	bytesRead     *prometheus.CounterVec
}

var _ hfabric.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg. A nil reg
// uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of package operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		searchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_results",
			Help:      "Number of hits returned per query",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}, []string{"op", "lang"}),
		materialized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "materializations_total",
			Help:      "Lazy structure constructions",
		}, []string{"structure", "status"}),
		bytesRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "materialized_bytes_total",
			Help:      "Bytes read while materializing structures",
		}, []string{"structure"}),
	}
	reg.MustRegister(c.opLatency, c.searchResults, c.materialized, c.bytesRead)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	c.opLatency.WithLabelValues(op, status(err)).Observe(d.Seconds())
}

// RecordOpen implements hfabric.MetricsCollector.
func (c *Collector) RecordOpen(d time.Duration, err error) { c.observe("open", d, err) }

// RecordGet implements hfabric.MetricsCollector.
func (c *Collector) RecordGet(d time.Duration, err error) { c.observe("get", d, err) }

// RecordSearch implements hfabric.MetricsCollector.
func (c *Collector) RecordSearch(lang string, results int, d time.Duration, err error) {
	c.observe("search", d, err)
	if err == nil {
		c.searchResults.WithLabelValues("search", lang).Observe(float64(results))
	}
}

// RecordSimilar implements hfabric.MetricsCollector.
func (c *Collector) RecordSimilar(results int, d time.Duration, err error) {
	c.observe("similar", d, err)
	if err == nil {
		c.searchResults.WithLabelValues("similar", "").Observe(float64(results))
	}
}

// RecordGraph implements hfabric.MetricsCollector.
func (c *Collector) RecordGraph(op string, d time.Duration, err error) {
	c.observe("graph_"+op, d, err)
}

// RecordMaterialize implements hfabric.MetricsCollector.
func (c *Collector) RecordMaterialize(structure string, bytes int64, d time.Duration, err error) {
	c.materialized.WithLabelValues(structure, status(err)).Inc()
	if err == nil {
		c.bytesRead.WithLabelValues(structure).Add(float64(bytes))
	}
	c.observe("materialize", d, err)
}
