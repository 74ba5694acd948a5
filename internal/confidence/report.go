package confidence

import (
	"fmt"
	"strings"
)

// RenderReport produces the markdown release-confidence report.
func RenderReport(s *Score) string {
	var sb strings.Builder

	sb.WriteString("# Release Confidence Report\n\n")
	sb.WriteString(fmt.Sprintf("**Overall Score:** %d/100\n", s.Overall))
	sb.WriteString(fmt.Sprintf("**Recommendation:** %s\n\n", s.Recommendation))
	sb.WriteString(fmt.Sprintf("%s\n\n", s.Details))

	sb.WriteString("## Components\n\n")
	sb.WriteString("| Component | Score | Weight | Contribution | Status |\n")
	sb.WriteString("|-----------|-------|--------|--------------|--------|\n")
	writeComponent(&sb, "Test Pass Rate", s.TestPassRate)
	writeComponent(&sb, "Risk Coverage", s.RiskCoverage)
	writeComponent(&sb, "Test Quality", s.TestQuality)
	writeComponent(&sb, "Human Validation Rate", s.HumanValidation)

	suggestions := improvementSuggestions(s)
	if len(suggestions) > 0 {
		sb.WriteString("\n## Suggested Improvements\n\n")
		for _, sug := range suggestions {
			sb.WriteString(fmt.Sprintf("- %s\n", sug))
		}
	}

	return sb.String()
}

func writeComponent(sb *strings.Builder, name string, c ComponentScore) {
	sb.WriteString(fmt.Sprintf("| %s | %.1f | %.0f%% | %.1f pts | %s |\n",
		name, c.Score, c.Weight*100, c.WeightedScore, c.Status))
}

func improvementSuggestions(s *Score) []string {
	var out []string
	if s.TestPassRate.Score < 80 {
		out = append(out, "Fix failing tests; the pass rate blocks release below 80%")
	}
	if s.RiskCoverage.Score < 70 {
		out = append(out, "Generate tests for untested critical/high risk features")
	}
	if s.TestQuality.Score < 70 {
		out = append(out, "Regenerate or revise low scoring test drafts before approval")
	}
	if s.HumanValidation.Score < 75 {
		out = append(out, "Review rejection patterns to improve generation prompts")
	}
	return out
}
