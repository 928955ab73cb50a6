package core

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide counters and gauges from spec.md §6.5,
// exported in Prometheus text format via the same client_golang registry
// idiom the teacher reaches for in its service layers.
type Metrics struct {
	queriesTotal    prometheus.Counter
	queryErrors     prometheus.Counter
	queryDuration   prometheus.Histogram
	vertexCount     prometheus.Gauge
	edgeCount       prometheus.Gauge
	bufferPoolHits  prometheus.Counter
	bufferPoolMiss  prometheus.Counter
	pagesFlushed    prometheus.Counter

	hits, misses, flushed atomic.Uint64
}

// NewMetrics registers a fresh metric set against reg. Pass
// prometheus.NewRegistry() for test isolation or prometheus.DefaultRegisterer
// for the process-wide server.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "chaingraph_queries_total",
			Help: "Total GQL queries executed.",
		}),
		queryErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "chaingraph_query_errors_total",
			Help: "Total GQL queries that returned an error.",
		}),
		queryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chaingraph_query_duration_seconds",
			Help:    "GQL query execution latency.",
			Buckets: prometheus.DefBuckets,
		}),
		vertexCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chaingraph_vertices",
			Help: "Current vertex count of the active graph.",
		}),
		edgeCount: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chaingraph_edges",
			Help: "Current edge count of the active graph.",
		}),
		bufferPoolHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "chaingraph_buffer_pool_hits_total",
			Help: "Buffer pool fetches served from cache.",
		}),
		bufferPoolMiss: factory.NewCounter(prometheus.CounterOpts{
			Name: "chaingraph_buffer_pool_misses_total",
			Help: "Buffer pool fetches that required a disk read.",
		}),
		pagesFlushed: factory.NewCounter(prometheus.CounterOpts{
			Name: "chaingraph_pages_flushed_total",
			Help: "Pages written back to disk.",
		}),
	}
}

func (m *Metrics) ObserveQuery(seconds float64, err error) {
	m.queriesTotal.Inc()
	m.queryDuration.Observe(seconds)
	if err != nil {
		m.queryErrors.Inc()
	}
}

func (m *Metrics) SetGraphSize(vertices, edges int) {
	m.vertexCount.Set(float64(vertices))
	m.edgeCount.Set(float64(edges))
}

func (m *Metrics) RecordBufferPoolHit() {
	m.bufferPoolHits.Inc()
	m.hits.Add(1)
}

func (m *Metrics) RecordBufferPoolMiss() {
	m.bufferPoolMiss.Inc()
	m.misses.Add(1)
}

func (m *Metrics) RecordPageFlushed() {
	m.pagesFlushed.Inc()
	m.flushed.Add(1)
}

// Snapshot returns plain counters for CLI/JSON reporting without requiring
// a Prometheus scrape.
type MetricsSnapshot struct {
	BufferPoolHits   uint64
	BufferPoolMisses uint64
	PagesFlushed     uint64
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		BufferPoolHits:   m.hits.Load(),
		BufferPoolMisses: m.misses.Load(),
		PagesFlushed:     m.flushed.Load(),
	}
}
