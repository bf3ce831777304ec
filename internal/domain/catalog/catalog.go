package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

// Entry is the canned finding and scenario set for one category.
type Entry struct {
	Summary         string                    `yaml:"summary"`
	Findings        []analysis.Finding        `yaml:"findings"`
	AttackScenarios []analysis.AttackScenario `yaml:"attackScenarios"`
}

// Catalog is an immutable category table. Lookups hand out copies, so one
// value can be shared by concurrent requests.
type Catalog struct {
	entries map[string]Entry
}

// New builds a catalog from raw entries, normalizing category names and
// severities on the way in.
func New(entries map[string]Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for name, e := range entries {
		key := normalizeCategory(name)
		if key == "" {
			continue
		}
		c.entries[key] = normalizeEntry(e)
	}
	return c
}

// Lookup returns the entry for category. Absence is a normal outcome.
func (c *Catalog) Lookup(category string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.entries[normalizeCategory(category)]
	if !ok {
		return Entry{}, false
	}
	return cloneEntry(e), true
}

// Categories lists the known category names in sorted order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return []string{}
	}
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type fileFormat struct {
	Categories map[string]Entry `yaml:"categories"`
}

// LoadFile reads a YAML catalog:
//
//	categories:
//	  web:
//	    summary: ...
//	    findings: [{title, severity, description}]
//	    attackScenarios: [{title, steps: [...]}]
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("catalog %s defines no categories", path)
	}
	return New(f.Categories), nil
}

func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeEntry(e Entry) Entry {
	out := cloneEntry(e)
	for i := range out.Findings {
		out.Findings[i].Severity = analysis.NormalizeSeverity(string(out.Findings[i].Severity))
		// ID diisi ulang oleh synthesizer
		out.Findings[i].ID = 0
	}
	return out
}

func cloneEntry(e Entry) Entry {
	out := Entry{
		Summary:         e.Summary,
		Findings:        make([]analysis.Finding, len(e.Findings)),
		AttackScenarios: make([]analysis.AttackScenario, len(e.AttackScenarios)),
	}
	copy(out.Findings, e.Findings)
	for i, s := range e.AttackScenarios {
		out.AttackScenarios[i] = analysis.AttackScenario{
			Title: s.Title,
			Steps: append([]string{}, s.Steps...),
		}
	}
	return out
}
