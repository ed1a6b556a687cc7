// Package metrics holds the Prometheus registry for saga dispatch/retry/
// failure counts, limiter wait time, store table sizes, and location-chain
// walk statistics, following the teacher's internal/interfaces/http
// MetricsRegistry shape.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evesaga/evesaga/internal/locationchain"
	"github.com/evesaga/evesaga/internal/store"
)

// Registry holds every metric this process exposes. Unlike the teacher's
// MetricsRegistry, which registers against prometheus's global default
// registerer, this carries its own *prometheus.Registry so a process can
// build more than one (e.g. in tests) without a double-registration
// panic.
type Registry struct {
	registry *prometheus.Registry

	SagaDispatched *prometheus.CounterVec
	SagaRetried    *prometheus.CounterVec
	SagaFailed     *prometheus.CounterVec

	LimiterWait prometheus.Histogram

	StoreTableSize *prometheus.GaugeVec

	LocationChainAvgDepth prometheus.Gauge
	LocationChainMaxDepth prometheus.Gauge
	LocationChainLookups  *prometheus.GaugeVec
}

// New builds and registers a fresh Registry.
func New() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.SagaDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evesaga_saga_dispatched_total",
			Help: "Total number of work items dispatched to a worker.",
		},
		[]string{"saga", "work_type"},
	)
	r.SagaRetried = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evesaga_saga_retried_total",
			Help: "Total number of work items retried after a transient failure.",
		},
		[]string{"saga", "work_type"},
	)
	r.SagaFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evesaga_saga_failed_total",
			Help: "Total number of work items that exhausted their retries or hit a permanent error.",
		},
		[]string{"saga", "work_type"},
	)
	r.LimiterWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evesaga_limiter_wait_seconds",
			Help:    "Time a request spent waiting for rate-limit admission.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
	)
	r.StoreTableSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evesaga_store_table_rows",
			Help: "Current row count of each in-memory store table.",
		},
		[]string{"table"},
	)
	r.LocationChainAvgDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "evesaga_location_chain_avg_depth",
			Help: "Mean hop count across every non-memoized location chain walk so far.",
		},
	)
	r.LocationChainMaxDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "evesaga_location_chain_max_depth",
			Help: "Deepest location chain walk observed so far.",
		},
	)
	r.LocationChainLookups = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "evesaga_location_chain_lookups",
			Help: "Cumulative location chain resolutions by outcome.",
		},
		[]string{"result"},
	)

	r.registry.MustRegister(
		r.SagaDispatched,
		r.SagaRetried,
		r.SagaFailed,
		r.LimiterWait,
		r.StoreTableSize,
		r.LocationChainAvgDepth,
		r.LocationChainMaxDepth,
		r.LocationChainLookups,
	)

	return r
}

// Handler serves this Registry's metrics in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordDispatch records one work item handed to a worker.
func (r *Registry) RecordDispatch(saga, workType string) {
	r.SagaDispatched.WithLabelValues(saga, workType).Inc()
}

// RecordRetry records one transient-failure retry.
func (r *Registry) RecordRetry(saga, workType string) {
	r.SagaRetried.WithLabelValues(saga, workType).Inc()
}

// RecordFailure records one permanent or retry-exhausted failure.
func (r *Registry) RecordFailure(saga, workType string) {
	r.SagaFailed.WithLabelValues(saga, workType).Inc()
}

// ObserveLimiterWait records time spent waiting for rate-limit admission.
func (r *Registry) ObserveLimiterWait(d time.Duration) {
	r.LimiterWait.Observe(d.Seconds())
}

// SampleStoreTableSizes pushes st's current table row counts into the
// gauge vector. Intended to be called periodically (e.g. once per saga
// run) rather than per-mutation.
func (r *Registry) SampleStoreTableSizes(st *store.Store) {
	for table, n := range st.TableSizes() {
		r.StoreTableSize.WithLabelValues(table).Set(float64(n))
	}
}

// SampleLocationChainStats pushes a locationchain.Stats snapshot's
// cumulative counters into gauges, replacing the original's
// println!-based stats dump with Prometheus series. Stats is itself a
// running total, so this sets rather than adds on every sample.
func (r *Registry) SampleLocationChainStats(stats locationchain.Stats) {
	r.LocationChainLookups.WithLabelValues("direct_station").Set(float64(stats.DirectStations))
	r.LocationChainLookups.WithLabelValues("walked").Set(float64(stats.TotalCalls - stats.DirectStations))
	r.LocationChainAvgDepth.Set(stats.AvgDepth())
	r.LocationChainMaxDepth.Set(float64(stats.MaxDepthSeen))
}
