package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sia-project/sia-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the ingestion pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	ingestRows      *prometheus.CounterVec
	ingestBatches   prometheus.Counter
	reportDuration  prometheus.Histogram
}

// NewMetricsService registers the collectors on a private registry.
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

	ingestRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rows_total",
		Help: "Extract rows processed by merge outcome",
	}, []string{"result"})

	ingestBatches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_batches_total",
		Help: "Completed import batches",
	})

	reportDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_build_duration_seconds",
		Help:    "Time spent building program progress reports",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(requestDuration, requestTotal, ingestRows, ingestBatches, reportDuration)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		ingestRows:      ingestRows,
		ingestBatches:   ingestBatches,
		reportDuration:  reportDuration,
	}
}

// Handler exposes the scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveRequest records one served HTTP request.
func (s *MetricsService) ObserveRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveIngestBatch records the outcome counters of one import batch.
func (s *MetricsService) ObserveIngestBatch(counters models.ImportAudit) {
	s.ingestRows.WithLabelValues("new").Add(float64(counters.New))
	s.ingestRows.WithLabelValues("updated").Add(float64(counters.Updated))
	s.ingestRows.WithLabelValues("error").Add(float64(counters.Errors))
	s.ingestRows.WithLabelValues("transfer").Add(float64(counters.Transfers))
	s.ingestBatches.Inc()
}

// ObserveReportBuild records how long one program report took to assemble.
func (s *MetricsService) ObserveReportBuild(duration time.Duration) {
	s.reportDuration.Observe(duration.Seconds())
}
