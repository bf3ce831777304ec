package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"artifact not found"}`))
	}))

	req := httptest.NewRequest(http.MethodGet, "/download/x.json", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "/download/x.json", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.EqualValues(t, len(`{"error":"artifact not found"}`), fields["bytes"])
}

func TestMetricsMiddlewareAndCounters(t *testing.T) {
	m := NewMetrics()
	ok := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	fail := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	fail.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	m.AnalysisCompleted(false)
	m.AnalysisCompleted(true)
	m.PersistFailed()
	m.Downloaded(true)
	m.Downloaded(false)

	rec := httptest.NewRecorder()
	m.Handler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 2, got["requests_total"])
	assert.EqualValues(t, 0, got["requests_in_progress"])
	assert.EqualValues(t, 1, got["requests_success"])
	assert.EqualValues(t, 1, got["requests_failed"])
	assert.EqualValues(t, 2, got["analyses_total"])
	assert.EqualValues(t, 1, got["analyses_unsupported"])
	assert.EqualValues(t, 1, got["persist_failures"])
	assert.EqualValues(t, 2, got["downloads_total"])
	assert.EqualValues(t, 1, got["downloads_not_found"])
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := HealthHandler(map[string]HealthChecker{
			"storage": CheckerFunc(func(context.Context) error { return nil }),
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got HealthReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "healthy", got.Status)
		assert.Equal(t, "healthy", got.Checks["storage"].Status)
	})

	t.Run("unhealthy", func(t *testing.T) {
		h := HealthHandler(map[string]HealthChecker{
			"storage":  CheckerFunc(func(context.Context) error { return nil }),
			"database": CheckerFunc(func(context.Context) error { return errors.New("connection refused") }),
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var got HealthReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "unhealthy", got.Status)
		assert.Equal(t, "connection refused", got.Checks["database"].Error)
	})
}

func TestLiveness(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReadinessFollowsStartupAndShutdown(t *testing.T) {
	var ready Readiness
	get := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		ready.Handler(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		return rec
	}

	rec := get()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "not ready before wiring completes")
	assert.Contains(t, rec.Body.String(), `"status":"not ready"`)

	ready.SetReady(true)
	rec = get()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)

	ready.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, get().Code)
}

func TestRecovererInsideLoggingAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	m := NewMetrics()

	var h http.Handler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	h = Recoverer(log)(h)
	h = m.Middleware(h)
	h = LoggingMiddleware(log)(h)

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("handler panic").Len())

	reqLogs := logs.FilterMessage("request").All()
	require.Len(t, reqLogs, 1)
	assert.EqualValues(t, http.StatusInternalServerError, reqLogs[0].ContextMap()["status"])
	assert.EqualValues(t, 1, m.Snapshot()["requests_failed"])
}

func TestRecovererRepanicsOnAbort(t *testing.T) {
	h := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "https://example.com", SanitizeString("  https://exa\x00mple.com\r\n"))
	assert.Equal(t, "a\tb", SanitizeString("a\tb\x7f"))
}

func TestValidateTarget(t *testing.T) {
	assert.NoError(t, ValidateTarget("https://example.com"))
	assert.NoError(t, ValidateTarget("db-01.internal"))
	assert.Error(t, ValidateTarget(""))
	assert.Error(t, ValidateTarget(strings.Repeat("a", maxTargetLength+1)))
}

func TestLimits(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 100, ValidateLimit(1000))
	assert.Equal(t, 5, ValidateLimit(5))
	assert.Equal(t, 20, ParseLimit(""))
	assert.Equal(t, 20, ParseLimit("abc"))
	assert.Equal(t, 7, ParseLimit(" 7 "))
	assert.Equal(t, 100, ParseLimit("500"))
}
