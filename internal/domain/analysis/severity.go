package analysis

import "strings"

// Severity is kept as an open string: the canonical set below is
// recommended, not enforced.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

var severityAliases = map[string]Severity{
	"critical":      SeverityCritical,
	"crítica":       SeverityCritical,
	"critica":       SeverityCritical,
	"crítico":       SeverityCritical,
	"critico":       SeverityCritical,
	"high":          SeverityHigh,
	"alta":          SeverityHigh,
	"alto":          SeverityHigh,
	"medium":        SeverityMedium,
	"moderate":      SeverityMedium,
	"media":         SeverityMedium,
	"medio":         SeverityMedium,
	"low":           SeverityLow,
	"baja":          SeverityLow,
	"bajo":          SeverityLow,
	"info":          SeverityInfo,
	"informational": SeverityInfo,
	"informativa":   SeverityInfo,
	"informativo":   SeverityInfo,
}

// NormalizeSeverity maps a free-form severity onto the canonical vocabulary.
// Unknown values are returned lower-cased and trimmed.
func NormalizeSeverity(s string) Severity {
	key := strings.ToLower(strings.TrimSpace(s))
	if sev, ok := severityAliases[key]; ok {
		return sev
	}
	return Severity(key)
}

// IsCanonical reports whether s belongs to the recommended set.
func (s Severity) IsCanonical() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}
