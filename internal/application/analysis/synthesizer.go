package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/analysis-backend/internal/application"
	domain "github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
	"github.com/bryanwahyu/analysis-backend/internal/domain/catalog"
)

// Synthesizer maps a category onto a canonical result. It never fails: an
// unknown category yields an "unsupported" result with the same shape.
type Synthesizer struct {
	Catalog *catalog.Catalog
	Clock   application.Clock
	NewID   func() domain.ArtifactID
}

// NewSynthesizer wires the catalog with the system clock and random ids.
func NewSynthesizer(c *catalog.Catalog) *Synthesizer {
	return &Synthesizer{
		Catalog: c,
		Clock:   application.SystemClock{},
		NewID:   domain.NewArtifactID,
	}
}

// Synthesize builds the result for category, including a fresh artifact id
// and both download paths.
func (s *Synthesizer) Synthesize(category string) *domain.Result {
	category = strings.TrimSpace(category)
	r := &domain.Result{
		Category:        category,
		Findings:        []domain.Finding{},
		AttackScenarios: []domain.AttackScenario{},
	}

	if entry, ok := s.Catalog.Lookup(category); ok {
		r.Status = domain.StatusOK
		r.Category = strings.ToLower(category)
		r.Summary = entry.Summary
		r.Findings = entry.Findings
		for i := range r.Findings {
			r.Findings[i].ID = i + 1
		}
		r.AttackScenarios = entry.AttackScenarios
	} else {
		r.Status = domain.StatusUnsupported
		r.Summary = fmt.Sprintf("Analysis category %q is not supported.", category)
	}
	r.Counts = domain.CountSeverities(r.Findings)

	r.ArtifactID = s.newID()
	r.DocumentPath = r.ArtifactID.DownloadPath(domain.FormatDocument)
	r.BundlePath = r.ArtifactID.DownloadPath(domain.FormatBundle)
	r.CreatedAt = s.now()
	return r
}

func (s *Synthesizer) newID() domain.ArtifactID {
	if s.NewID == nil {
		return domain.NewArtifactID()
	}
	return s.NewID()
}

func (s *Synthesizer) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
