package analysis

import (
	"time"
)

// ArtifactID identifies one synthesized result and both of its encodings.
type ArtifactID string

// Status enum
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnsupported Status = "unsupported"
)

// Finding is one security observation inside a result. ID is 1-based and
// contiguous within the result.
type Finding struct {
	ID          int      `json:"id" yaml:"-"`
	Title       string   `json:"title" yaml:"title"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
}

// AttackScenario is an ordered exploitation chain; step order is significant.
type AttackScenario struct {
	Title string   `json:"title" yaml:"title"`
	Steps []string `json:"steps" yaml:"steps"`
}

// SeverityCounts value object
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
	Total    int `json:"total"`
}

// CountSeverities tallies findings per canonical severity. Severities outside
// the canonical set only add to Total.
func CountSeverities(findings []Finding) SeverityCounts {
	var c SeverityCounts
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			c.Critical++
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		case SeverityLow:
			c.Low++
		case SeverityInfo:
			c.Info++
		}
		c.Total++
	}
	return c
}

// Result is the canonical analysis outcome. It is created once per request
// and never changed after it has been persisted.
type Result struct {
	Status          Status           `json:"status"`
	Category        string           `json:"category"`
	Target          string           `json:"target,omitempty"`
	Summary         string           `json:"summary,omitempty"`
	Findings        []Finding        `json:"findings"`
	AttackScenarios []AttackScenario `json:"attack_scenarios"`
	Counts          SeverityCounts   `json:"counts"`
	Report          string           `json:"report,omitempty"`
	AuxiliaryData   map[string]any   `json:"auxiliary_data,omitempty"`
	ArtifactID      ArtifactID       `json:"artifact_id"`
	DocumentPath    string           `json:"document_download_path"`
	BundlePath      string           `json:"bundle_download_path"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Record is the index row kept for each persisted artifact.
type Record struct {
	ArtifactID ArtifactID     `json:"artifact_id"`
	Target     string         `json:"target"`
	Category   string         `json:"category"`
	Status     Status         `json:"status"`
	Counts     SeverityCounts `json:"counts"`
	CreatedAt  time.Time      `json:"created_at"`
}

// RecordOf projects a result onto its index row.
func RecordOf(r *Result) *Record {
	return &Record{
		ArtifactID: r.ArtifactID,
		Target:     r.Target,
		Category:   r.Category,
		Status:     r.Status,
		Counts:     r.Counts,
		CreatedAt:  r.CreatedAt,
	}
}
