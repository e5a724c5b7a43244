package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOrder(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordOrder("XAUUSD", "BUY", "risk", 1)
	m.RecordOrder("XAUUSD", "BUY", "risk", 0.5)
	m.RecordOrder("EURUSD", "SELL", "fixed", 0.1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersTotal.WithLabelValues("XAUUSD", "BUY", "risk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersTotal.WithLabelValues("EURUSD", "SELL", "fixed")))
}

func TestRecordFailure(t *testing.T) {
	t.Parallel()

	m := New()
	m.RecordFailure("Trade failed")
	m.RecordFailure("Trade failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.failuresTotal.WithLabelValues("Trade failed")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRequest("/api/balance", http.MethodGet, http.StatusOK, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `fxgate_http_requests_total{code="200",method="GET",route="/api/balance"} 1`)
	assert.Contains(t, body, "fxgate_http_request_duration_seconds_bucket")
}
