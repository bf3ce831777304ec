package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

// GetReportSystemPrompt provides the directions for the narrative report.
func GetReportSystemPrompt() string {
	return `You are a senior cybersecurity consultant writing a concise, professional security report.
You receive the findings and attack scenarios of one automated analysis.

Requirements:
- Plain text only, no markdown tables and no code fences.
- Start with a two-sentence executive summary naming the overall risk.
- Then list the findings from most to least severe with one remediation each.
- Close with the attack scenarios as numbered chains, keeping the given step order.
- Do not invent findings that are not listed.`
}

// GetReportUserPrompt renders a result into the user message.
func GetReportUserPrompt(r *analysis.Result) string {
	var sb strings.Builder
	target := r.Target
	if target == "" {
		target = "Not specified"
	}
	fmt.Fprintf(&sb, "Target: %s\n", target)
	fmt.Fprintf(&sb, "Category: %s\n", r.Category)
	if r.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", r.Summary)
	}
	fmt.Fprintf(&sb, "Counts: critical=%d high=%d medium=%d low=%d info=%d total=%d\n",
		r.Counts.Critical, r.Counts.High, r.Counts.Medium, r.Counts.Low, r.Counts.Info, r.Counts.Total)

	if len(r.Findings) == 0 {
		sb.WriteString("\nNo findings were reported by the analysis.\n")
	} else {
		sb.WriteString("\nFindings:\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&sb, "%d. [%s] %s - %s\n", f.ID, f.Severity, f.Title, f.Description)
		}
	}

	if len(r.AttackScenarios) > 0 {
		sb.WriteString("\nAttack scenarios:\n")
		for _, s := range r.AttackScenarios {
			fmt.Fprintf(&sb, "- %s\n", s.Title)
			for i, step := range s.Steps {
				fmt.Fprintf(&sb, "  %d) %s\n", i+1, step)
			}
		}
	}
	return sb.String()
}
