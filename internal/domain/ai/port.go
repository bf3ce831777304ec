package ai

import (
	"context"

	"github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

// Narrator turns a synthesized result into a consultant-style report.
type Narrator interface {
	Narrate(ctx context.Context, r *analysis.Result) (string, error)
}
