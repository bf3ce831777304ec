package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/analysis-backend/internal/application/analysis"
	"github.com/bryanwahyu/analysis-backend/internal/config"
	domain "github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
	"github.com/bryanwahyu/analysis-backend/internal/domain/catalog"
	aiopenai "github.com/bryanwahyu/analysis-backend/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/analysis-backend/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/analysis-backend/internal/infra/db/postgres"
	"github.com/bryanwahyu/analysis-backend/internal/infra/httpserver"
	"github.com/bryanwahyu/analysis-backend/internal/infra/storage"
	"github.com/bryanwahyu/analysis-backend/internal/middleware"
	"github.com/bryanwahyu/analysis-backend/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	log, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer observability.Sync(log)

	ctx := context.Background()
	ready := &middleware.Readiness{}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", zap.Strings("categories", cat.Categories()))

	checkers := map[string]middleware.HealthChecker{}

	store, err := newArtifactStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	checkers["storage"] = store

	svc := &appanalysis.Service{
		Synth:     appanalysis.NewSynthesizer(cat),
		Artifacts: store,
		Log:       log.Named("analysis"),
	}

	// index opsional
	if cfg.Database.Driver != "" {
		db, index, err := newIndex(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		svc.Index = index
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
		log.Info("analysis index enabled", zap.String("driver", cfg.Database.Driver))
	}

	if cfg.AI.Enabled {
		svc.Narrator = aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		log.Info("report narrator enabled", zap.String("model", cfg.AI.Model))
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Checkers:       checkers,
		Metrics:        middleware.NewMetrics(),
		Readiness:      ready,
		Log:            log,
		IndexEnabled:   svc.Index != nil,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// catalog dan store sudah siap di titik ini
	ready.SetReady(true)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info("shutting down server", zap.String("signal", sig.String()))
		ready.SetReady(false)
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Warn("shutdown error", zap.Error(err))
	}
	return nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.Catalog.Path)
}

type artifactStore interface {
	domain.ArtifactStore
	middleware.HealthChecker
}

func newArtifactStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (artifactStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageMinio:
		m := cfg.Storage.Minio
		store, err := storage.NewObjectStore(ctx, storage.MinioOptions{
			Endpoint:   m.Endpoint,
			Region:     m.Region,
			BucketName: m.BucketName,
			AccessKey:  m.AccessKey,
			SecretKey:  m.SecretKey,
			Prefix:     m.Prefix,
			UseSSL:     m.UseSSL,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("minio init: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewFileStore(cfg.Storage.ResultsDir, log)
		if err != nil {
			return nil, fmt.Errorf("results dir init: %w", err)
		}
		return store, nil
	}
}

type indexRepository interface {
	domain.Repository
	EnsureSchema(ctx context.Context) error
}

func newIndex(ctx context.Context, cfg *config.Config) (*sql.DB, domain.Repository, error) {
	var (
		db   *sql.DB
		repo indexRepository
		err  error
	)
	switch cfg.Database.Driver {
	case config.DatabaseMySQL:
		if db, err = mysqlp.Connect(ctx, cfg.MySQLDSN()); err == nil {
			repo = mysqlp.NewAnalysisRepository(db)
		}
	case config.DatabasePostgres:
		if db, err = pgp.Connect(ctx, cfg.PostgresDSN()); err == nil {
			repo = pgp.NewAnalysisRepository(db)
		}
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s connect: %w", cfg.Database.Driver, err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%s schema: %w", cfg.Database.Driver, err)
	}
	return db, repo, nil
}
