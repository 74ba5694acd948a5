package quality

import (
	"fmt"
	"strings"
)

// RenderReport produces the markdown quality report for a scored test.
func RenderReport(testName string, v *Vector) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Test Quality Report: %s\n\n", testName))
	sb.WriteString(fmt.Sprintf("**Overall Score:** %d/100\n\n", v.Overall))

	sb.WriteString("| Dimension | Score |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Syntax | %d |\n", v.Syntax))
	sb.WriteString(fmt.Sprintf("| Coverage | %d |\n", v.Coverage))
	sb.WriteString(fmt.Sprintf("| Assertions | %d |\n", v.Assertions))
	sb.WriteString(fmt.Sprintf("| Maintainability | %d |\n", v.Maintainability))
	sb.WriteString(fmt.Sprintf("| Best Practices | %d |\n", v.BestPractices))

	if len(v.Issues) == 0 {
		sb.WriteString("\nNo issues found.\n")
		return sb.String()
	}

	for _, sev := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		var group []Issue
		for _, issue := range v.Issues {
			if issue.Severity == sev {
				group = append(group, issue)
			}
		}
		if len(group) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n## %ss\n\n", titleCase(string(sev))))
		for _, issue := range group {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", issue.Category, issue.Message))
		}
	}

	return sb.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
