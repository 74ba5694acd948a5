package coverage

import (
	"fmt"
	"strings"

	"testwright/internal/models"
)

// RenderReport produces the markdown coverage report.
func RenderReport(m *Metrics) string {
	var sb strings.Builder

	sb.WriteString("# Test Coverage Report\n\n")
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Overall coverage:** %.1f%%\n", m.Overall))
	sb.WriteString(fmt.Sprintf("- **Risk-weighted coverage:** %d%%\n", m.RiskWeighted))
	sb.WriteString(fmt.Sprintf("- **Coverage gaps:** %d\n\n", len(m.Gaps)))

	sb.WriteString("## Coverage by Risk Level\n\n")
	sb.WriteString("| Risk Level | Tested | Total | Coverage |\n")
	sb.WriteString("|------------|--------|-------|----------|\n")
	for _, level := range models.Levels() {
		lc := m.ByLevel[level]
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.1f%% |\n", level, lc.Tested, lc.Total, lc.Percentage))
	}

	urgent := gapsWithPriority(m.Gaps, PriorityUrgent)
	high := gapsWithPriority(m.Gaps, PriorityHigh)

	if len(urgent) > 0 {
		sb.WriteString("\n## Urgent Gaps\n\n")
		for _, g := range urgent {
			sb.WriteString(fmt.Sprintf("- **%s** (%s, score %d)\n", g.FeatureName, g.RiskLevel, g.RiskScore))
		}
	}
	if len(high) > 0 {
		sb.WriteString("\n## High Priority Gaps\n\n")
		for _, g := range high {
			sb.WriteString(fmt.Sprintf("- **%s** (%s, score %d)\n", g.FeatureName, g.RiskLevel, g.RiskScore))
		}
	}

	if len(m.Gaps) > 0 {
		sb.WriteString("\n## Recommendations\n\n")
		for _, g := range m.Gaps {
			sb.WriteString(fmt.Sprintf("- %s\n", g.Recommendation))
		}
	}

	return sb.String()
}

func gapsWithPriority(gaps []Gap, p GapPriority) []Gap {
	var out []Gap
	for _, g := range gaps {
		if g.Priority == p {
			out = append(out, g)
		}
	}
	return out
}
