package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordSubmission("V5-V6", 5*1024*1024)
	m.RecordSubmission("V5-V6", 1024)
	m.RecordRejection(RejectReasonQuota)
	m.RecordAdminLogin("rejected")
	m.SetRemainingSlots(7)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/submissions", http.StatusCreated, 20*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("V5-V6")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues(RejectReasonQuota)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.adminLogins.WithLabelValues("rejected")))
	require.Equal(t, 7.0, testutil.ToFloat64(m.remainingSlots))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requestTotal.WithLabelValues(http.MethodPost, "/api/v1/submissions", "201")))
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordRejection(RejectReasonValidation)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), `intake_rejections_total{reason="validation"} 1`))

	var nilMetrics *MetricsService
	nilMetrics.RecordSubmission("V0-V2", 1)
	w = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
