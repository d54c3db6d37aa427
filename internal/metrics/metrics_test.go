package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/api/goals", 200, time.Millisecond)
		m.NotificationCreated("welcome")
		m.DeadlineRun(3)
		m.WSOpened()
		m.WSClosed()
	})
}

func TestCounters(t *testing.T) {
	m := New()

	m.NotificationCreated("task_overdue")
	m.NotificationCreated("task_overdue")
	m.DeadlineRun(2)
	m.DeadlineRun(0)
	m.WSOpened()
	m.WSOpened()
	m.WSClosed()
	m.ObserveRequest("GET", "/api/goals", 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.notificationsCreated.WithLabelValues("task_overdue")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.deadlineRuns))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.deadlineNotifications))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsConnections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/goals", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.NotificationCreated("welcome")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `goalforge_notifications_created_total{type="welcome"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
