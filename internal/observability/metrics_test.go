package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

func TestRegisterMetricsIsIdempotent(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()
	RecordHTTPRequest("GET", "/v1/healthz", 200, 12*time.Millisecond)
	RecordLogin(true)
	RecordActivity("memory_created")
	StorageMetrics{}.ObserveRead(time.Millisecond, 10)
	StorageMetrics{}.ObserveBatchCommit(time.Millisecond, 2, 64)
}

func TestCounterStreamGauge(t *testing.T) {
	before := testutil.ToFloat64(counterStreams)
	done := CounterStreamOpened()
	require.Equal(t, before+1, testutil.ToFloat64(counterStreams))
	done()
	done()
	require.Equal(t, before, testutil.ToFloat64(counterStreams))
}

func TestTickPanicHook(t *testing.T) {
	hook := TickPanicHook("test")
	before := testutil.ToFloat64(tickPanics.WithLabelValues("test"))
	hook("boom")
	require.Equal(t, before+1, testutil.ToFloat64(tickPanics.WithLabelValues("test")))
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	var buf bytes.Buffer
	logger := logpkg.NewLogger(logpkg.WithOutput(logpkg.NewWriterOutput(&buf)))
	h := RequestLogger(logger)(RequestMetrics(mux))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "GET /v1/things/{id}", "418"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/things/42", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)
	require.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "GET /v1/things/{id}", "418")))
	require.True(t, strings.Contains(buf.String(), "http_request"))
}

func TestMetricsHandlerServesCollectors(t *testing.T) {
	RecordLogin(false)
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "flowerlove_auth_logins_total")
}
