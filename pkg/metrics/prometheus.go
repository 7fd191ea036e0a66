package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the finno engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Training
	trainingDuration    *prometheus.HistogramVec
	trainingRuns        *prometheus.CounterVec
	trainingPopulation  prometheus.Gauge
	untrainedCategories prometheus.Gauge
	snapshotVersion     prometheus.Gauge
	snapshotLastUnix    prometheus.Gauge

	// Inference
	scoringLatency       prometheus.Histogram
	fallbackExplanations prometheus.Counter
	forecastEmpty        prometheus.Counter
	recommendations      prometheus.Histogram

	// Retrain queue
	retrainQueueDepth    prometheus.Gauge
	retrainQueueCapacity prometheus.Gauge
	retrainEnqueued      prometheus.Counter
	retrainDropped       prometheus.Counter
	retrainCoalesced     prometheus.Counter

	// Ledger
	ledgerUsers        prometheus.Gauge
	ledgerTransactions prometheus.Gauge
	duplicateWrites    prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "finno",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
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

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.trainingDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "training_duration_seconds",
		Help:        "Duration of a training pass by component",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: m.constLabels,
	}, []string{"component"})
	m.trainingRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "training_runs_total",
		Help:        "Training passes by result",
		ConstLabels: m.constLabels,
	}, []string{"result"})
	m.trainingPopulation = m.gauge("training_population", "Users in the current snapshot")
	m.untrainedCategories = m.gauge("forecast_untrained_categories", "Tracked categories without a fitted forecast model")
	m.snapshotVersion = m.gauge("snapshot_version", "Version of the serving snapshot")
	m.snapshotLastUnix = m.gauge("snapshot_last_unix_seconds", "Unix time the serving snapshot was trained")

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scoring_latency_milliseconds",
		Help:        "Latency of health score inference in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
	m.fallbackExplanations = m.counter("fallback_explanations_total", "Explanations answered with the fixed attribution table")
	m.forecastEmpty = m.counter("forecast_empty_total", "Forecasts that returned no category")
	m.recommendations = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "recommendations_per_request",
		Help:        "Number of recommendations returned per request",
		Buckets:     []float64{0, 1, 2, 3, 4, 5},
		ConstLabels: m.constLabels,
	})

	m.retrainQueueDepth = m.gauge("retrain_queue_depth", "Pending retrain jobs")
	m.retrainQueueCapacity = m.gauge("retrain_queue_capacity", "Capacity of the retrain queue")
	m.retrainEnqueued = m.counter("retrain_enqueued_total", "Retrain jobs accepted by the queue")
	m.retrainDropped = m.counter("retrain_dropped_total", "Retrain jobs rejected because the queue was full or closed")
	m.retrainCoalesced = m.counter("retrain_coalesced_total", "Retrain jobs folded into another retraining pass")

	m.ledgerUsers = m.gauge("ledger_users", "Users held by the ledger")
	m.ledgerTransactions = m.gauge("ledger_transactions", "Transactions held by the ledger")
	m.duplicateWrites = m.counter("duplicate_writes_total", "Transaction writes acknowledged as retries of an earlier write")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})
}

// RecordTrainingDuration records how long one component took to train.
func RecordTrainingDuration(component string, d time.Duration) {
	globalManager.trainingDuration.WithLabelValues(component).Observe(d.Seconds())
}

// RecordTrainingRun counts a finished training pass; result is "ok" or
// "error".
func RecordTrainingRun(result string) {
	globalManager.trainingRuns.WithLabelValues(result).Inc()
}

// UpdateTrainingPopulation sets the number of users in the snapshot.
func UpdateTrainingPopulation(users int) {
	globalManager.trainingPopulation.Set(float64(users))
}

// UpdateUntrainedCategories sets the number of categories without a model.
func UpdateUntrainedCategories(n int) {
	globalManager.untrainedCategories.Set(float64(n))
}

// UpdateSnapshot records the version and training time of the serving
// snapshot.
func UpdateSnapshot(version uint64, trainedAt time.Time) {
	globalManager.snapshotVersion.Set(float64(version))
	globalManager.snapshotLastUnix.Set(float64(trainedAt.Unix()))
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordFallbackExplanation counts an explanation served from the fixed
// table.
func RecordFallbackExplanation() {
	globalManager.fallbackExplanations.Inc()
}

// RecordForecastEmpty counts a forecast with no categories.
func RecordForecastEmpty() {
	globalManager.forecastEmpty.Inc()
}

// RecordRecommendations records the size of a recommendation list.
func RecordRecommendations(n int) {
	globalManager.recommendations.Observe(float64(n))
}

// UpdateRetrainQueueDepth sets the number of pending retrain jobs.
func UpdateRetrainQueueDepth(depth int) {
	globalManager.retrainQueueDepth.Set(float64(depth))
}

// UpdateRetrainQueueCapacity sets the retrain queue capacity.
func UpdateRetrainQueueCapacity(capacity int) {
	globalManager.retrainQueueCapacity.Set(float64(capacity))
}

// RecordRetrainEnqueued counts an accepted retrain job.
func RecordRetrainEnqueued() {
	globalManager.retrainEnqueued.Inc()
}

// RecordRetrainDropped counts a rejected retrain job.
func RecordRetrainDropped() {
	globalManager.retrainDropped.Inc()
}

// RecordRetrainCoalesced counts jobs folded into a single pass.
func RecordRetrainCoalesced(n int) {
	if n > 0 {
		globalManager.retrainCoalesced.Add(float64(n))
	}
}

// UpdateLedgerSize sets the ledger gauges.
func UpdateLedgerSize(users, transactions int) {
	globalManager.ledgerUsers.Set(float64(users))
	globalManager.ledgerTransactions.Set(float64(transactions))
}

// RecordDuplicateWrite counts a write rejected by its idempotency key.
func RecordDuplicateWrite() {
	globalManager.duplicateWrites.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
