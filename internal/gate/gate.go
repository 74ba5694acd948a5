package gate

import (
	"fmt"
	"strings"

	"testwright/internal/confidence"
)

// GateSeverity decides whether a failed gate blocks the PR or only warns.
type GateSeverity string

const (
	SeverityCritical GateSeverity = "critical"
	SeverityHigh     GateSeverity = "high"
)

// Result is the outcome of one named gate check.
type Result struct {
	Name      string       `json:"name"`
	Passed    bool         `json:"passed"`
	Score     float64      `json:"score"`
	Threshold float64      `json:"threshold"`
	Severity  GateSeverity `json:"severity"`
}

// ValidationResult is the full PR gate outcome. OverallPassed is true
// iff no critical-severity gate failed; failed high-severity gates
// surface as warnings only.
type ValidationResult struct {
	Gates         []Result `json:"gates"`
	OverallPassed bool     `json:"overallPassed"`
	Blockers      []string `json:"blockers"`
	Warnings      []string `json:"warnings"`
}

// Validate runs the four fixed gate checks against a confidence score.
func Validate(s *confidence.Score) *ValidationResult {
	gates := []Result{
		check("Test Pass Rate", s.TestPassRate.Score, 80, SeverityCritical),
		check("Risk Coverage", s.RiskCoverage.Score, 80, SeverityCritical),
		check("Test Quality", s.TestQuality.Score, 70, SeverityHigh),
		check("Overall Confidence", float64(s.Overall), 75, SeverityHigh),
	}

	result := &ValidationResult{Gates: gates, OverallPassed: true}
	for _, g := range gates {
		if g.Passed {
			continue
		}
		msg := fmt.Sprintf("%s: %.1f below threshold %.0f", g.Name, g.Score, g.Threshold)
		if g.Severity == SeverityCritical {
			result.OverallPassed = false
			result.Blockers = append(result.Blockers, msg)
		} else {
			result.Warnings = append(result.Warnings, msg)
		}
	}
	return result
}

func check(name string, score, threshold float64, severity GateSeverity) Result {
	return Result{
		Name:      name,
		Passed:    score >= threshold,
		Score:     score,
		Threshold: threshold,
		Severity:  severity,
	}
}

// RenderComment produces the markdown comment for posting on a pull
// request. The Gate/Status/Score/Threshold table layout is part of the
// contract for downstream consumers that parse it.
func RenderComment(v *ValidationResult, s *confidence.Score) string {
	var sb strings.Builder

	if v.OverallPassed {
		sb.WriteString("## ✅ Test Validation Passed\n\n")
	} else {
		sb.WriteString("## ❌ Test Validation Failed\n\n")
	}

	sb.WriteString("| Gate | Status | Score | Threshold |\n")
	sb.WriteString("|------|--------|-------|-----------|\n")
	for _, g := range v.Gates {
		status := "✅ pass"
		if !g.Passed {
			status = "❌ fail"
			if g.Severity == SeverityHigh {
				status = "⚠️ warn"
			}
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %.1f | %.0f |\n", g.Name, status, g.Score, g.Threshold))
	}

	if len(v.Blockers) > 0 {
		sb.WriteString("\n### Blockers\n\n")
		for _, b := range v.Blockers {
			sb.WriteString(fmt.Sprintf("- %s\n", b))
		}
	}
	if len(v.Warnings) > 0 {
		sb.WriteString("\n### Warnings\n\n")
		for _, w := range v.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	sb.WriteString("\n### Components\n\n")
	sb.WriteString(fmt.Sprintf("- Test pass rate: %.1f\n", s.TestPassRate.Score))
	sb.WriteString(fmt.Sprintf("- Risk coverage: %.1f\n", s.RiskCoverage.Score))
	sb.WriteString(fmt.Sprintf("- Test quality: %.1f\n", s.TestQuality.Score))
	sb.WriteString(fmt.Sprintf("- Human validation rate: %.1f\n", s.HumanValidation.Score))

	return sb.String()
}
