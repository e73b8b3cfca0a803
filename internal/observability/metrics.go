// Package observability holds flowerlove's Prometheus collectors and the
// HTTP middleware that feeds them.
package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowerlove",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flowerlove",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	counterStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "flowerlove",
			Subsystem: "counter",
			Name:      "streams_active",
			Help:      "Open live counter (SSE) streams.",
		},
	)
	tickPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowerlove",
			Subsystem: "elapsed",
			Name:      "tick_panics_total",
			Help:      "Recovered panics inside periodic recompute callbacks.",
		},
		[]string{"component"},
	)
	activityEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowerlove",
			Subsystem: "activity",
			Name:      "events_total",
			Help:      "Activity entries appended, by kind.",
		},
		[]string{"kind"},
	)
	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowerlove",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		},
		[]string{"result"},
	)
	storageRead = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "flowerlove",
			Subsystem: "storage",
			Name:      "read_duration_seconds",
			Help:      "Point read latency.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
	)
	storageCommit = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "flowerlove",
			Subsystem: "storage",
			Name:      "batch_commit_duration_seconds",
			Help:      "Batch commit latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)
	storageCommitBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "flowerlove",
			Subsystem: "storage",
			Name:      "committed_bytes_total",
			Help:      "Bytes committed through batches.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration, counterStreams, tickPanics,
			activityEvents, logins, storageRead, storageCommit, storageCommitBytes,
		)
	})
}

// Handler serves the default registry for /metrics.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}

// CounterStreamOpened increments the live stream gauge and returns the
// matching decrement.
func CounterStreamOpened() (closed func()) {
	RegisterMetrics()
	counterStreams.Inc()
	var once sync.Once
	return func() { once.Do(counterStreams.Dec) }
}

// TickPanicHook returns a panic hook for elapsed.WithPanicHook.
func TickPanicHook(component string) func(interface{}) {
	RegisterMetrics()
	c := tickPanics.WithLabelValues(component)
	return func(interface{}) { c.Inc() }
}

func RecordActivity(kind string) {
	RegisterMetrics()
	activityEvents.WithLabelValues(kind).Inc()
}

func RecordLogin(ok bool) {
	RegisterMetrics()
	result := "failure"
	if ok {
		result = "success"
	}
	logins.WithLabelValues(result).Inc()
}

// StorageMetrics implements pebblestore.MetricsHook.
type StorageMetrics struct{}

func (StorageMetrics) ObserveRead(elapsed time.Duration, _ int) {
	RegisterMetrics()
	storageRead.Observe(elapsed.Seconds())
}

func (StorageMetrics) ObserveBatchCommit(elapsed time.Duration, _ int, bytes int) {
	RegisterMetrics()
	storageCommit.Observe(elapsed.Seconds())
	storageCommitBytes.Add(float64(bytes))
}
