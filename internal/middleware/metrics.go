package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics. The zero value is not usable; call
// NewMetrics.
type Metrics struct {
	requestsTotal      atomic.Uint64
	requestsInProgress atomic.Int64
	requestsSuccess    atomic.Uint64
	requestsFailed     atomic.Uint64

	analysesTotal       atomic.Uint64
	analysesUnsupported atomic.Uint64
	persistFailures     atomic.Uint64
	downloadsTotal      atomic.Uint64
	downloadsNotFound   atomic.Uint64

	startTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// AnalysisCompleted counts one persisted analysis.
func (m *Metrics) AnalysisCompleted(unsupported bool) {
	m.analysesTotal.Add(1)
	if unsupported {
		m.analysesUnsupported.Add(1)
	}
}

func (m *Metrics) PersistFailed() {
	m.persistFailures.Add(1)
}

// Downloaded counts one download attempt.
func (m *Metrics) Downloaded(found bool) {
	m.downloadsTotal.Add(1)
	if !found {
		m.downloadsNotFound.Add(1)
	}
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]interface{} {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]interface{}{
		"requests_total":       m.requestsTotal.Load(),
		"requests_in_progress": m.requestsInProgress.Load(),
		"requests_success":     m.requestsSuccess.Load(),
		"requests_failed":      m.requestsFailed.Load(),
		"analyses_total":       m.analysesTotal.Load(),
		"analyses_unsupported": m.analysesUnsupported.Load(),
		"persist_failures":     m.persistFailures.Load(),
		"downloads_total":      m.downloadsTotal.Load(),
		"downloads_not_found":  m.downloadsNotFound.Load(),
		"uptime_seconds":       time.Since(m.startTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsTotal.Add(1)
		m.requestsInProgress.Add(1)
		defer m.requestsInProgress.Add(-1)

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.requestsSuccess.Add(1)
		} else {
			m.requestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m.Snapshot())
}
