package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons recorded by the intake flow.
const (
	RejectReasonQuota      = "quota"
	RejectReasonValidation = "validation"
	RejectReasonStorage    = "storage"
)

// MetricsService encapsulates Prometheus instrumentation for the intake service.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	uploadSize      prometheus.Histogram
	adminLogins     *prometheus.CounterVec
	remainingSlots  prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors on a private registry.
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

	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_submissions_total",
		Help: "Accepted video submissions by grade",
	}, []string{"grade"})

	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_rejections_total",
		Help: "Rejected video submissions by reason",
	}, []string{"reason"})

	uploadSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "intake_upload_size_bytes",
		Help:    "Size of stored video uploads",
		Buckets: prometheus.ExponentialBuckets(1<<20, 2, 9),
	})

	adminLogins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_logins_total",
		Help: "Admin login attempts by result",
	}, []string{"result"})

	remainingSlots := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "intake_remaining_slots",
		Help: "Remaining weekly submission slots as of the last quota read",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, submissions, rejections, uploadSize, adminLogins, remainingSlots, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		submissions:     submissions,
		rejections:      rejections,
		uploadSize:      uploadSize,
		adminLogins:     adminLogins,
		remainingSlots:  remainingSlots,
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

// Registry exposes the underlying registry (tests gather from it).
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordSubmission counts an accepted submission and its stored size.
func (m *MetricsService) RecordSubmission(grade string, sizeBytes int64) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(grade).Inc()
	m.uploadSize.Observe(float64(sizeBytes))
}

// RecordRejection counts a refused submission.
func (m *MetricsService) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}

// RecordAdminLogin counts an admin login attempt.
func (m *MetricsService) RecordAdminLogin(result string) {
	if m == nil {
		return
	}
	m.adminLogins.WithLabelValues(result).Inc()
}

// SetRemainingSlots publishes the latest remaining-slot figure.
func (m *MetricsService) SetRemainingSlots(remaining int) {
	if m == nil {
		return
	}
	m.remainingSlots.Set(float64(remaining))
}
