// Package metrics provides Prometheus metrics for the movestat pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for one registry.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline
	matchesProcessed       prometheus.Counter
	matchesFailed          *prometheus.CounterVec
	framesRead             prometheus.Counter
	framesDropped          prometheus.Counter
	motionsEstimated       prometheus.Counter
	continuityDecisions    *prometheus.CounterVec
	reconciliationFailures prometheus.Counter
	undefinedSpeeds        *prometheus.CounterVec
	stageLatency           *prometheus.HistogramVec

	// Fleet execution
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	activeWorkers prometheus.Gauge

	// Storage
	storedRecords prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it at startup, before any metric is recorded.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "movestat",
		subsystem:        "pipeline",
		histogramBuckets: []float64{0.5, 1, 5, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.matchesProcessed = m.counter("matches_processed_total", "Matches whose pipeline completed and reconciled")
	m.matchesFailed = m.counterVec("matches_failed_total", "Matches aborted by a pipeline error", "reason")
	m.framesRead = m.counter("frames_read_total", "Raw frames read from tracking data")
	m.framesDropped = m.counter("frames_dropped_total", "Frames dropped because they carry no timestamp")
	m.motionsEstimated = m.counter("motions_estimated_total", "Per-player per-frame displacement estimates")
	m.continuityDecisions = m.counterVec("continuity_decisions_total", "Continuity decisions by accepting predicate", "predicate")
	m.reconciliationFailures = m.counter("reconciliation_failures_total", "Partition sums that did not reconcile")
	m.undefinedSpeeds = m.counterVec("undefined_speeds_total", "Speed lookups on buckets with zero time", "bucket")
	m.stageLatency = m.histogramVec("stage_latency_milliseconds", "Pipeline stage latency in milliseconds", "stage")

	m.queueSize = m.gauge("queue_size", "Match jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the match job queue")
	m.activeWorkers = m.gauge("active_workers", "Workers currently running a match pipeline")

	m.storedRecords = m.gauge("stored_records", "Per-player match records held by the store")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
}

// RecordMatchProcessed counts a successfully reconciled match.
func (m *Manager) RecordMatchProcessed() {
	if m.enabled {
		m.matchesProcessed.Inc()
	}
}

// RecordMatchFailed counts an aborted match by reason (data, reconciliation, ...).
func (m *Manager) RecordMatchFailed(reason string) {
	if m.enabled {
		m.matchesFailed.WithLabelValues(reason).Inc()
	}
}

// RecordFrames adds read and dropped frame counts.
func (m *Manager) RecordFrames(read, dropped int) {
	if m.enabled {
		m.framesRead.Add(float64(read))
		m.framesDropped.Add(float64(dropped))
	}
}

// RecordMotions adds n displacement estimates.
func (m *Manager) RecordMotions(n int) {
	if m.enabled {
		m.motionsEstimated.Add(float64(n))
	}
}

// RecordContinuityDecision counts a continuity decision.
func (m *Manager) RecordContinuityDecision(predicate string) {
	if m.enabled {
		m.continuityDecisions.WithLabelValues(predicate).Inc()
	}
}

// RecordReconciliationFailure counts a failed partition check.
func (m *Manager) RecordReconciliationFailure() {
	if m.enabled {
		m.reconciliationFailures.Inc()
	}
}

// RecordUndefinedSpeed counts a speed lookup on a zero-time bucket.
func (m *Manager) RecordUndefinedSpeed(bucket string) {
	if m.enabled {
		m.undefinedSpeeds.WithLabelValues(bucket).Inc()
	}
}

// RecordStageLatency observes a stage duration in milliseconds.
func (m *Manager) RecordStageLatency(stage string, ms float64) {
	if m.enabled {
		m.stageLatency.WithLabelValues(stage).Observe(ms)
	}
}

// UpdateQueue sets queue size and capacity.
func (m *Manager) UpdateQueue(size, capacity int) {
	if m.enabled {
		m.queueSize.Set(float64(size))
		m.queueCapacity.Set(float64(capacity))
	}
}

// AddActiveWorkers moves the active worker gauge by delta.
func (m *Manager) AddActiveWorkers(delta int) {
	if m.enabled {
		m.activeWorkers.Add(float64(delta))
	}
}

// UpdateStoredRecords sets the stored record gauge.
func (m *Manager) UpdateStoredRecords(n int) {
	if m.enabled {
		m.storedRecords.Set(float64(n))
	}
}

// RecordHTTPRequest counts an HTTP request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// Package-level helpers delegate to the global manager.

func RecordMatchProcessed()                     { globalManager.RecordMatchProcessed() }
func RecordMatchFailed(reason string)           { globalManager.RecordMatchFailed(reason) }
func RecordFrames(read, dropped int)            { globalManager.RecordFrames(read, dropped) }
func RecordMotions(n int)                       { globalManager.RecordMotions(n) }
func RecordContinuityDecision(predicate string) { globalManager.RecordContinuityDecision(predicate) }
func RecordReconciliationFailure()              { globalManager.RecordReconciliationFailure() }
func RecordUndefinedSpeed(bucket string)        { globalManager.RecordUndefinedSpeed(bucket) }
func RecordStageLatency(stage string, ms float64) {
	globalManager.RecordStageLatency(stage, ms)
}
func UpdateQueue(size, capacity int) { globalManager.UpdateQueue(size, capacity) }
func AddActiveWorkers(delta int)     { globalManager.AddActiveWorkers(delta) }
func UpdateStoredRecords(n int)      { globalManager.UpdateStoredRecords(n) }
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// GetRegistry returns the registry backing the package-level helpers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
