package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	healthTimeout   = 5 * time.Second
	databaseTimeout = 2 * time.Second
)

// HealthChecker is one dependency probed by GET /health.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to HealthChecker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the analysis index.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, databaseTimeout)
	defer cancel()
	return d.DB.PingContext(ctx)
}

type HealthReport struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Checks    map[string]CheckOutcome `json:"checks"`
}

type CheckOutcome struct {
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// RunChecks probes every checker concurrently under one deadline.
func RunChecks(ctx context.Context, checkers map[string]HealthChecker) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	report := HealthReport{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckOutcome, len(checkers)),
	}
	var mu sync.Mutex
	var g errgroup.Group
	for name, checker := range checkers {
		g.Go(func() error {
			start := time.Now()
			err := checker.Check(ctx)
			out := CheckOutcome{Status: "healthy", DurationMS: time.Since(start).Milliseconds()}
			if err != nil {
				out.Status = "unhealthy"
				out.Error = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = out
			if err != nil {
				report.Status = "unhealthy"
			}
			// kegagalan dicatat di report, bukan di group
			return nil
		})
	}
	_ = g.Wait()
	return report
}

// HealthHandler answers 503 when any dependency check fails.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := RunChecks(r.Context(), checkers)
		code := http.StatusOK
		if report.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, report)
	}
}

// Readiness flips to ready once the catalog and artifact store are wired,
// and back to not-ready when shutdown begins.
type Readiness struct {
	ready atomic.Bool
	since atomic.Pointer[time.Time]
}

func (r *Readiness) SetReady(ready bool) {
	now := time.Now().UTC()
	r.ready.Store(ready)
	r.since.Store(&now)
}

func (r *Readiness) Ready() bool { return r.ready.Load() }

// Handler serves GET /ready.
func (r *Readiness) Handler(w http.ResponseWriter, req *http.Request) {
	body := map[string]any{"status": "ready"}
	if t := r.since.Load(); t != nil {
		body["since"] = *t
	}
	if !r.Ready() {
		body["status"] = "not ready"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// LivenessHandler only proves the process serves HTTP.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
