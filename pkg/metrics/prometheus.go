// Package metrics exposes Prometheus metrics for the rating service.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StarBuckets spans the usual star range with finer steps at the low end.
var StarBuckets = []float64{0.5, 1, 1.5, 2, 2.5, 3, 4, 5, 6, 7, 8, 10}

// Manager owns every metric the service records.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// submissions
	beatmapsSubmitted prometheus.Counter
	beatmapsDuplicate prometheus.Counter
	beatmapsRejected  *prometheus.CounterVec

	// calculation
	calculations       *prometheus.CounterVec
	calculationLatency prometheus.Histogram
	nestedObjects      *prometheus.CounterVec
	slidersDecomposed  prometheus.Counter
	stars              prometheus.Histogram
	ratedBeatmaps      prometheus.Gauge

	// queue
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueEnqueueFails prometheus.Counter
	queueWait         prometheus.Histogram

	// workers
	workerCount  prometheus.Gauge
	workerBusy   prometheus.Gauge
	workerErrors prometheus.Counter

	// repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// http
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // metrics must exist before any Record call
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates and registers a full metric set.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "juicerank",
		subsystem:        "difficulty",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts(m.counterOpts(name, help))
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)
	ms := m.histogramBuckets

	m.beatmapsSubmitted = auto.NewCounter(m.counterOpts("beatmaps_submitted_total", "Beatmaps accepted for rating"))
	m.beatmapsDuplicate = auto.NewCounter(m.counterOpts("beatmaps_duplicate_total", "Submissions whose checksum was already seen"))
	m.beatmapsRejected = auto.NewCounterVec(m.counterOpts("beatmaps_rejected_total", "Submissions rejected before queuing"), []string{"reason"})

	m.calculations = auto.NewCounterVec(m.counterOpts("calculations_total", "Difficulty calculations by result"), []string{"result"})
	m.calculationLatency = auto.NewHistogram(m.histogramOpts("calculation_latency_milliseconds", "Time spent rating one beatmap", ms))
	m.nestedObjects = auto.NewCounterVec(m.counterOpts("nested_objects_total", "Palpable objects produced by slider decomposition"), []string{"kind"})
	m.slidersDecomposed = auto.NewCounter(m.counterOpts("sliders_decomposed_total", "Sliders turned into juice streams"))
	m.stars = auto.NewHistogram(m.histogramOpts("stars", "Distribution of computed star ratings", StarBuckets))
	m.ratedBeatmaps = auto.NewGauge(m.gaugeOpts("rated_beatmaps", "Beatmaps currently held by the rating store"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queued jobs"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "queue_size / queue_capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Jobs handed to workers"))
	m.queueEnqueueFails = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Jobs refused by the queue"))
	m.queueWait = auto.NewHistogram(m.histogramOpts("queue_wait_milliseconds", "Time between enqueue and dequeue", ms))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Workers in the pool"))
	m.workerBusy = auto.NewGauge(m.gaugeOpts("worker_busy_count", "Workers currently calculating"))
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Jobs that failed in a worker"))

	m.repositoryUpdateLatency = auto.NewHistogram(m.histogramOpts("repository_update_latency_milliseconds", "Rating upsert latency", ms))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogramOpts("repository_query_latency_milliseconds", "Rank and leaderboard query latency", ms))

	httpLabels := []string{"endpoint", "method", "status_code"}
	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests"), httpLabels)
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration", ms), httpLabels)

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total", "Errors by component and type"), []string{"component", "error_type"})
}

// RecordBeatmapSubmitted counts an accepted submission.
func RecordBeatmapSubmitted() { globalManager.beatmapsSubmitted.Inc() }

// RecordBeatmapDuplicate counts a submission dropped by the dedupe filter.
func RecordBeatmapDuplicate() { globalManager.beatmapsDuplicate.Inc() }

// RecordBeatmapRejected counts a submission refused with reason.
func RecordBeatmapRejected(reason string) {
	globalManager.beatmapsRejected.WithLabelValues(reason).Inc()
}

// RecordCalculation counts one finished calculation; result is "ok" or "error".
func RecordCalculation(result string) {
	globalManager.calculations.WithLabelValues(result).Inc()
}

// RecordCalculationLatency observes how long a calculation took.
func RecordCalculationLatency(latencyMs float64) {
	globalManager.calculationLatency.Observe(latencyMs)
}

// RecordNestedObjects adds n objects of the given kind.
func RecordNestedObjects(kind string, n int) {
	if n <= 0 {
		return
	}
	globalManager.nestedObjects.WithLabelValues(kind).Add(float64(n))
}

// RecordSlidersDecomposed adds n decomposed sliders.
func RecordSlidersDecomposed(n int) {
	if n <= 0 {
		return
	}
	globalManager.slidersDecomposed.Add(float64(n))
}

// RecordStars observes a computed star rating.
func RecordStars(stars float64) { globalManager.stars.Observe(stars) }

// UpdateRatedBeatmaps sets the number of stored ratings.
func UpdateRatedBeatmaps(count int) { globalManager.ratedBeatmaps.Set(float64(count)) }

// UpdateQueueSize sets the current backlog.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue bound.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the fill ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue counts a job handed out.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError counts a refused job.
func RecordQueueEnqueueError() { globalManager.queueEnqueueFails.Inc() }

// RecordQueueWait observes the time a job spent queued.
func RecordQueueWait(latencyMs float64) { globalManager.queueWait.Observe(latencyMs) }

// UpdateWorkerCount sets the pool size.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// AddWorkerBusy moves the busy-worker gauge by delta.
func AddWorkerBusy(delta int) { globalManager.workerBusy.Add(float64(delta)) }

// RecordWorkerError counts a failed job.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordRepositoryUpdateLatency observes an upsert.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency observes a rank or leaderboard read.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest counts a served request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes a served request's duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error raised by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry every global metric is registered on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors to
// the global registry. Calling it again is a no-op.
func RegisterRuntimeCollectors() error {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := customRegistry.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
