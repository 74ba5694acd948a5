package rejection

import (
	"fmt"
	"strings"
)

// RenderReport produces the markdown rejection report: summary,
// per-category breakdown, a 7-day trend table, and recommendations.
func RenderReport(s *Stats) string {
	var sb strings.Builder

	sb.WriteString("# Rejection Report\n\n")
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Decisions:** %d\n", s.TotalDecisions))
	sb.WriteString(fmt.Sprintf("- **Rejections:** %d\n", s.TotalRejections))
	sb.WriteString(fmt.Sprintf("- **Rejection rate:** %.1f%%\n", s.RejectionRate))

	if len(s.CommonPatterns) > 0 {
		sb.WriteString("\n## Rejection Reasons\n\n")
		for _, p := range s.CommonPatterns {
			sb.WriteString(fmt.Sprintf("### %s: %d (%.1f%%)\n\n", p.Reason, p.Count, p.Percentage))
			for _, ex := range p.Examples {
				sb.WriteString(fmt.Sprintf("> %s\n\n", ex))
			}
		}
	}

	if n := len(s.Trend); n >= 7 {
		sb.WriteString("## Last 7 Days\n\n")
		sb.WriteString("| Date | Rejections | Approvals | Rate |\n")
		sb.WriteString("|------|------------|-----------|------|\n")
		for _, day := range s.Trend[n-7:] {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.1f%% |\n",
				day.Date, day.Rejections, day.Approvals, day.RejectionRate))
		}
	}

	if len(s.CommonPatterns) > 0 {
		sb.WriteString("\n## Recommendations\n\n")
		for i, p := range s.CommonPatterns {
			if i == 3 {
				break
			}
			sb.WriteString(fmt.Sprintf("- %s\n", adviceFor(p.Reason)))
		}
	}

	return sb.String()
}
