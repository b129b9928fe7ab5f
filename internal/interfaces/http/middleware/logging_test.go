package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/prometheus"
)

func TestRequestLoggingPassesThrough(t *testing.T) {
	mw := RequestLogging(logging.NewNopLogger(), nil, DefaultLoggingConfig())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRequestLoggingSkipsConfiguredPaths(t *testing.T) {
	mw := RequestLogging(logging.NewNopLogger(), nil, DefaultLoggingConfig())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLoggingRecordsMetrics(t *testing.T) {
	metrics := prometheus.New()
	mw := RequestLogging(logging.NewNopLogger(), metrics, DefaultLoggingConfig())
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	assert.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), `vitaquote_http_requests_total{method="GET",path="/api/v1/quotes",status_code="200"} 2`)
}

func TestWrappedResponseWriterDefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	w := newWrappedResponseWriter(rec)
	_, _ = w.Write([]byte("hello"))

	assert.Equal(t, http.StatusOK, w.statusCode)
	assert.Equal(t, int64(5), w.bytesWritten)
}
