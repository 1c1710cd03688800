// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager manages Prometheus metrics for DressCodex. All record
// methods are safe to call on a nil manager.
type MetricsManager struct {
	// HTTP metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Extraction metrics
	pagesFetched      *prometheus.CounterVec
	extractionsTotal  *prometheus.CounterVec
	extractionTime    *prometheus.HistogramVec
	fieldsMissing     *prometheus.CounterVec
	configResolutions *prometheus.CounterVec

	// Detection metrics
	findingsTotal   *prometheus.CounterVec
	detectionTime   *prometheus.HistogramVec
	capabilityCalls *prometheus.CounterVec

	// Storage metrics
	storeOperations *prometheus.CounterVec

	goroutineCount prometheus.Gauge

	registry  *prometheus.Registry
	namespace string
}

// MetricsConfig configuration for metrics
type MetricsConfig struct {
	Namespace       string `json:"namespace" yaml:"namespace"`
	EnableGoMetrics bool   `json:"enable_go_metrics" yaml:"enable_go_metrics"`
	// Registry defaults to a fresh private registry.
	Registry *prometheus.Registry `json:"-" yaml:"-"`
}

// NewMetricsManager creates a new metrics manager
func NewMetricsManager(config MetricsConfig) *MetricsManager {
	if config.Namespace == "" {
		config.Namespace = "dresscodex"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	mm := &MetricsManager{
		registry:  config.Registry,
		namespace: config.Namespace,
	}
	mm.initializeMetrics()

	if config.EnableGoMetrics {
		mm.registry.MustRegister(collectors.NewGoCollector())
		mm.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return mm
}

// initializeMetrics initializes all Prometheus metrics
func (mm *MetricsManager) initializeMetrics() {
	factory := promauto.With(mm.registry)

	mm.requestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests served",
		},
		[]string{"method", "route", "status_code"},
	)

	mm.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	mm.pagesFetched = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "pages_fetched_total",
			Help:      "Total number of product pages fetched",
		},
		[]string{"host", "status"},
	)

	mm.extractionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "extractions_total",
			Help:      "Total number of product extractions by retailer and outcome",
		},
		[]string{"retailer", "outcome"},
	)

	mm.extractionTime = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting a product from a parsed page",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"retailer"},
	)

	mm.fieldsMissing = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "fields_missing_total",
			Help:      "Optional product fields no selector matched",
		},
		[]string{"retailer", "field"},
	)

	mm.configResolutions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "retailer",
			Name:      "config_resolutions_total",
			Help:      "Retailer config resolutions by source",
		},
		[]string{"source"},
	)

	mm.findingsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "duplicate",
			Name:      "findings_total",
			Help:      "Duplicate findings emitted by kind",
		},
		[]string{"kind"},
	)

	mm.detectionTime = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: "duplicate",
			Name:      "detection_duration_seconds",
			Help:      "Duplicate detection duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	mm.capabilityCalls = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "llm",
			Name:      "capability_calls_total",
			Help:      "Language model capability calls by capability and outcome",
		},
		[]string{"capability", "outcome"},
	)

	mm.storeOperations = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "wardrobe",
			Name:      "store_operations_total",
			Help:      "Wardrobe store operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	mm.goroutineCount = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: mm.namespace,
			Subsystem: "system",
			Name:      "goroutines",
			Help:      "Number of goroutines",
		},
	)
}

// HTTP metrics
func (mm *MetricsManager) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	if mm == nil {
		return
	}
	mm.requestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	mm.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Extraction metrics
func (mm *MetricsManager) RecordPageFetched(host string, statusCode int) {
	if mm == nil {
		return
	}
	mm.pagesFetched.WithLabelValues(host, strconv.Itoa(statusCode)).Inc()
}

func (mm *MetricsManager) RecordExtraction(retailer, outcome string, duration time.Duration) {
	if mm == nil {
		return
	}
	mm.extractionsTotal.WithLabelValues(retailer, outcome).Inc()
	mm.extractionTime.WithLabelValues(retailer).Observe(duration.Seconds())
}

func (mm *MetricsManager) RecordMissingField(retailer, field string) {
	if mm == nil {
		return
	}
	mm.fieldsMissing.WithLabelValues(retailer, field).Inc()
}

func (mm *MetricsManager) RecordConfigResolution(source string) {
	if mm == nil {
		return
	}
	mm.configResolutions.WithLabelValues(source).Inc()
}

// Detection metrics
func (mm *MetricsManager) RecordFindings(kind string, count int) {
	if mm == nil || count == 0 {
		return
	}
	mm.findingsTotal.WithLabelValues(kind).Add(float64(count))
}

func (mm *MetricsManager) RecordDetection(operation string, duration time.Duration) {
	if mm == nil {
		return
	}
	mm.detectionTime.WithLabelValues(operation).Observe(duration.Seconds())
}

func (mm *MetricsManager) RecordCapabilityCall(capability, outcome string) {
	if mm == nil {
		return
	}
	mm.capabilityCalls.WithLabelValues(capability, outcome).Inc()
}

// Storage metrics
func (mm *MetricsManager) RecordStoreOperation(operation string, err error) {
	if mm == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	mm.storeOperations.WithLabelValues(operation, outcome).Inc()
}

func (mm *MetricsManager) UpdateGoroutineCount() {
	if mm == nil {
		return
	}
	mm.goroutineCount.Set(float64(runtime.NumGoroutine()))
}

// Registry returns the registry the metrics are registered on.
func (mm *MetricsManager) Registry() *prometheus.Registry {
	return mm.registry
}

// MetricsHandler returns an HTTP handler for metrics endpoint
func (mm *MetricsManager) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(mm.registry, promhttp.HandlerOpts{})
}
