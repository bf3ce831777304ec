package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/analysis-backend/internal/domain/ai"
	domain "github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

const (
	defaultLatestLimit = 20
	maxLatestLimit     = 100
)

// Service implements the analyze and download use-cases.
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Synth     *Synthesizer
	Artifacts domain.ArtifactStore

	// Index and Narrator are optional.
	Index    domain.Repository
	Narrator ai.Narrator

	Log *zap.Logger
}

// AnalyzeCommand untuk trigger analisis
type AnalyzeCommand struct {
	Target        string
	Category      string
	AuxiliaryData map[string]any
}

// Analyze runs Received -> Synthesized -> Persisted. The result is only
// returned once both encodings are stored.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*domain.Result, error) {
	target := strings.TrimSpace(cmd.Target)
	if target == "" {
		return nil, fmt.Errorf("%w: target is required", domain.ErrInvalidRequest)
	}

	r := s.Synth.Synthesize(cmd.Category)
	r.Target = target
	if len(cmd.AuxiliaryData) > 0 {
		r.AuxiliaryData = cmd.AuxiliaryData
	}
	log := s.logger().With(
		zap.String("artifact_id", string(r.ArtifactID)),
		zap.String("category", r.Category),
		zap.String("status", string(r.Status)),
	)

	if s.Narrator != nil && r.Status == domain.StatusOK {
		report, err := s.Narrator.Narrate(ctx, r)
		switch {
		case errors.Is(err, ai.ErrQuotaExceeded):
			log.Warn("report narrator quota exceeded", zap.Error(err))
		case err != nil:
			log.Warn("report narration failed", zap.Error(err))
		default:
			r.Report = report
		}
	}

	if err := s.Artifacts.Persist(ctx, r); err != nil {
		log.Error("artifact persistence failed", zap.Error(err))
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.Save(ctx, domain.RecordOf(r)); err != nil {
			log.Warn("analysis index write failed", zap.Error(err))
		}
	}

	log.Info("analysis persisted", zap.Int("findings", len(r.Findings)))
	return r, nil
}

// Download resolves "<id>.json" or "<id>.zip" to an open artifact.
func (s *Service) Download(ctx context.Context, name string) (*domain.Download, error) {
	id, format, err := domain.ParseArtifactName(name)
	if err != nil {
		return nil, err
	}
	return s.Artifacts.Retrieve(ctx, id, format)
}

// Get ambil 1 record index by artifact id
func (s *Service) Get(ctx context.Context, id string) (*domain.Record, error) {
	if s.Index == nil {
		return nil, domain.ErrArtifactNotFound
	}
	artifactID, err := domain.ParseArtifactID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	rec, err := s.Index.Get(ctx, artifactID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrArtifactNotFound
	}
	return rec, nil
}

// Latest ambil N record terakhir untuk satu target
func (s *Service) Latest(ctx context.Context, target string, limit int) ([]*domain.Record, error) {
	if s.Index == nil {
		return []*domain.Record{}, nil
	}
	if limit <= 0 {
		limit = defaultLatestLimit
	}
	if limit > maxLatestLimit {
		limit = maxLatestLimit
	}
	out, err := s.Index.LatestByTarget(ctx, strings.TrimSpace(target), limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Record{}
	}
	return out, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
