package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/analysis-backend/internal/application/analysis"
	domain "github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
	"github.com/bryanwahyu/analysis-backend/internal/middleware"
)

const (
	maxBodyBytes = 1 << 20
	rootMessage  = "Analysis backend running. POST /analyze to analyze."
)

// Options carries the optional parts of the router.
type Options struct {
	AllowedOrigins []string
	// Checkers feed GET /health, keyed by component name.
	Checkers map[string]middleware.HealthChecker
	Metrics  *middleware.Metrics
	// Readiness backs GET /ready; nil means always ready.
	Readiness *middleware.Readiness
	Log       *zap.Logger
	// IndexEnabled mounts the /analyses routes.
	IndexEnabled bool
}

type Router struct {
	svc     *appanalysis.Service
	metrics *middleware.Metrics
	log     *zap.Logger
}

func NewRouter(svc *appanalysis.Service, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	if opts.Readiness == nil {
		opts.Readiness = &middleware.Readiness{}
		opts.Readiness.SetReady(true)
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{svc: svc, metrics: opts.Metrics, log: opts.Log.Named("router")}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(middleware.LoggingMiddleware(opts.Log))
	mux.Use(opts.Metrics.Middleware)
	mux.Use(middleware.Recoverer(opts.Log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	mux.Get("/", r.handleRoot)
	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", opts.Readiness.Handler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", opts.Metrics.Handler)

	mux.Post("/analyze", r.wrap(r.handleAnalyze))
	mux.Get("/download/{name}", r.wrap(r.handleDownload))

	if opts.IndexEnabled {
		mux.Get("/analyses", r.wrap(r.handleLatest))
		mux.Get("/analyses/{id}", r.wrap(r.handleGet))
	}

	mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, domain.ErrArtifactNotFound):
			writeError(w, http.StatusNotFound, "artifact not found")
		case errors.Is(err, domain.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrPersistence):
			writeError(w, http.StatusInternalServerError, "failed to persist analysis artifacts")
		default:
			r.log.Error("request failed",
				zap.String("path", req.URL.Path),
				zap.String("request_id", chimw.GetReqID(req.Context())),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
	}
}

// GET /
func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

// analyzeRequest accepts the field aliases older clients send.
type analyzeRequest struct {
	Target        string          `json:"target"`
	URL           string          `json:"url"`
	Category      json.RawMessage `json:"category"`
	Type          json.RawMessage `json:"type"`
	AuxiliaryData map[string]any  `json:"auxiliary_data"`
	Extra         map[string]any  `json:"extra"`
	Data          map[string]any  `json:"data"`
}

func (b analyzeRequest) command() appanalysis.AnalyzeCommand {
	target := middleware.SanitizeString(b.Target)
	if target == "" {
		target = middleware.SanitizeString(b.URL)
	}
	category := stringOrEmpty(b.Category)
	if category == "" {
		category = stringOrEmpty(b.Type)
	}
	aux := b.AuxiliaryData
	if aux == nil {
		aux = b.Extra
	}
	if aux == nil {
		aux = b.Data
	}
	return appanalysis.AnalyzeCommand{
		Target:        target,
		Category:      middleware.SanitizeString(category),
		AuxiliaryData: aux,
	}
}

// stringOrEmpty: kategori non-string diperlakukan seperti kosong (unsupported)
func stringOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// POST /analyze
// Body: {"target"|"url": "...", "category"|"type": "...", "auxiliary_data": {...}}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	// angka di auxiliary_data harus kembali persis seperti dikirim
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must hold a single JSON object", domain.ErrInvalidRequest)
	}
	cmd := body.command()
	if err := middleware.ValidateTarget(cmd.Target); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	res, err := r.svc.Analyze(req.Context(), cmd)
	if err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			r.metrics.PersistFailed()
		}
		return err
	}
	r.metrics.AnalysisCompleted(res.Status == domain.StatusUnsupported)

	writeJSON(w, http.StatusOK, res)
	return nil
}

// GET /download/{name}
func (r *Router) handleDownload(w http.ResponseWriter, req *http.Request) error {
	dl, err := r.svc.Download(req.Context(), chi.URLParam(req, "name"))
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			r.metrics.Downloaded(false)
		}
		return err
	}
	defer dl.Body.Close()
	r.metrics.Downloaded(true)

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	if dl.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, dl.Body); err != nil {
		// header sudah terkirim, cukup log
		r.log.Warn("download interrupted", zap.String("file", dl.FileName), zap.Error(err))
	}
	return nil
}

// GET /analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	rec, err := r.svc.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rec)
	return nil
}

// GET /analyses?target=&limit=
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	target := middleware.SanitizeString(q.Get("target"))
	if err := middleware.ValidateTarget(target); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	list, err := r.svc.Latest(req.Context(), target, middleware.ParseLimit(q.Get("limit")))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"target": target,
		"items":  list,
	})
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
