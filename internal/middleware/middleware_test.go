package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cantis/FlaskFactor2/internal/metrics"
	tu "github.com/cantis/FlaskFactor2/internal/testutil"
)

func TestLogging_RecordsStatusAndMetrics(t *testing.T) {
	logger, logs := tu.CaptureLogger()
	m := metrics.New()

	h := Logging(logger, "api", m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	entries := logs.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "http request", entries[0]["msg"])
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, float64(http.StatusTeapot), entries[0]["status"])
	assert.Equal(t, float64(len("short and stout")), entries[0]["size"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("api", "GET", "418")))
}

func TestLogging_NilMetrics(t *testing.T) {
	h := Logging(tu.NopLogger(), "web", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery_CallsHandler(t *testing.T) {
	logger, logs := tu.CaptureLogger()
	var recovered any

	h := Recovery(logger, func(w http.ResponseWriter, r *http.Request, err any) {
		recovered = err
		w.WriteHeader(http.StatusInternalServerError)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/players", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", recovered)
	assert.Contains(t, logs.Messages(), "panic recovered")
}

func TestRecovery_PassesThrough(t *testing.T) {
	h := Recovery(tu.NopLogger(), func(w http.ResponseWriter, r *http.Request, err any) {
		t.Fatal("handler must not run")
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
