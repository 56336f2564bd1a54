package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/examplanner-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and keeps lightweight counters for snapshots.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	planDuration    prometheus.Observer
	previews        *prometheus.CounterVec
	commits         prometheus.Counter
	seatsAssigned   prometheus.Counter
	unseated        prometheus.Counter
	staffShortfall  prometheus.Counter
	publications    *prometheus.CounterVec

	previewCount  uint64
	commitCount   uint64
	seatedCount   uint64
	unseatedCount uint64

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	dbQueryCount         uint64
	dbQueryDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	planDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allotment_plan_duration_seconds",
		Help:    "Time spent planning seats and invigilators for a preview",
		Buckets: prometheus.DefBuckets,
	})

	previews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allotment_previews_total",
		Help: "Allotment previews by outcome",
	}, []string{"outcome"})

	commits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allotment_commits_total",
		Help: "Committed session allotments",
	})

	seatsAssigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allotment_seats_assigned_total",
		Help: "Seats filled across previews",
	})

	unseated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allotment_unseated_total",
		Help: "Candidates left without a seat across previews",
	})

	staffShortfall := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allotment_invigilator_shortfall_total",
		Help: "Rooms left short of invigilators across previews",
	})

	publications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allotment_publications_total",
		Help: "Publication job results by target",
	}, []string{"target", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, dbQueryDuration,
		planDuration, previews, commits, seatsAssigned, unseated, staffShortfall, publications, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		planDuration:    planDuration,
		previews:        previews,
		commits:         commits,
		seatsAssigned:   seatsAssigned,
		unseated:        unseated,
		staffShortfall:  staffShortfall,
		publications:    publications,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
	atomic.AddUint64(&m.dbQueryCount, 1)
	atomic.AddUint64(&m.dbQueryDurationTotal, uint64(duration.Nanoseconds()))
}

// ObservePreview records the outcome of one preview run.
func (m *MetricsService) ObservePreview(outcome string, seated, unseated, shortStaffed int, duration time.Duration) {
	if m == nil {
		return
	}
	m.previews.WithLabelValues(outcome).Inc()
	m.planDuration.Observe(duration.Seconds())
	m.seatsAssigned.Add(float64(seated))
	m.unseated.Add(float64(unseated))
	m.staffShortfall.Add(float64(shortStaffed))
	atomic.AddUint64(&m.previewCount, 1)
	atomic.AddUint64(&m.seatedCount, uint64(seated))
	atomic.AddUint64(&m.unseatedCount, uint64(unseated))
}

// ObserveCommit counts committed session allotments.
func (m *MetricsService) ObserveCommit(sessions int) {
	if m == nil {
		return
	}
	m.commits.Add(float64(sessions))
	atomic.AddUint64(&m.commitCount, uint64(sessions))
}

// ObservePublication records a publication attempt against target.
func (m *MetricsService) ObservePublication(target string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.publications.WithLabelValues(target, outcome).Inc()
}

// Snapshot returns aggregated metrics for the metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	dbCount := atomic.LoadUint64(&m.dbQueryCount)
	dbDuration := atomic.LoadUint64(&m.dbQueryDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgDBMs float64
	if dbCount > 0 {
		avgDBMs = float64(dbDuration) / float64(dbCount) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		DBQueryCount:             dbCount,
		AverageDBQueryDurationMs: avgDBMs,
		PreviewsTotal:            atomic.LoadUint64(&m.previewCount),
		CommitsTotal:             atomic.LoadUint64(&m.commitCount),
		SeatsAssignedTotal:       atomic.LoadUint64(&m.seatedCount),
		UnseatedTotal:            atomic.LoadUint64(&m.unseatedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
