package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"testwright/internal/coverage"
	"testwright/internal/models"
	"testwright/internal/quality"
)

func input(passed, failed, riskWeighted int, qualityScores []int, approved, rejected int) Input {
	vectors := make([]*quality.Vector, 0, len(qualityScores))
	for _, q := range qualityScores {
		vectors = append(vectors, &quality.Vector{Overall: q})
	}
	return Input{
		Run:         models.TestRunStats{Total: passed + failed, Passed: passed, Failed: failed},
		Coverage:    &coverage.Metrics{RiskWeighted: riskWeighted},
		Quality:     vectors,
		Validations: ValidationStats{Approved: approved, Rejected: rejected},
	}
}

func TestCalculate_PerfectInputs(t *testing.T) {
	s := Calculate(input(10, 0, 100, []int{100, 100}, 5, 0))

	assert.Equal(t, 100, s.Overall)
	assert.Equal(t, ReadyToRelease, s.Recommendation)
	assert.Equal(t, StatusExcellent, s.TestPassRate.Status)
}

func TestCalculate_BlockedByPassRate(t *testing.T) {
	// 60% pass rate with otherwise excellent signals must block.
	s := Calculate(input(6, 4, 90, []int{90}, 9, 1))

	assert.Equal(t, Blocked, s.Recommendation, "pass rate below 80 overrides the numeric score")
	assert.Contains(t, s.Details, "pass rate")
}

func TestCalculate_BlockedByRiskCoverage(t *testing.T) {
	s := Calculate(input(10, 0, 50, []int{95}, 10, 0))

	assert.Equal(t, Blocked, s.Recommendation, "risk coverage below 70 overrides the numeric score")
	assert.Contains(t, s.Details, "risk coverage")
}

func TestCalculate_WeightedOverall(t *testing.T) {
	// 0.4*90 + 0.3*80 + 0.2*70 + 0.1*100 = 36+24+14+10 = 84
	s := Calculate(input(9, 1, 80, []int{70}, 0, 0))

	assert.Equal(t, 84, s.Overall)
	assert.Equal(t, ReadyWithCaution, s.Recommendation)
}

func TestCalculate_EmptyQualityVectors(t *testing.T) {
	s := Calculate(input(10, 0, 100, nil, 0, 0))

	assert.Equal(t, 0.0, s.TestQuality.Score, "no vectors degrades to 0, not an error")
	assert.Equal(t, StatusPoor, s.TestQuality.Status)
}

func TestCalculate_QualityAveragesVectors(t *testing.T) {
	s := Calculate(input(10, 0, 100, []int{60, 80, 100}, 0, 0))
	assert.Equal(t, 80.0, s.TestQuality.Score)
}

func TestCalculate_NoValidationsIsPerfect(t *testing.T) {
	s := Calculate(input(10, 0, 100, []int{100}, 0, 0))
	assert.Equal(t, 100.0, s.HumanValidation.Score, "nothing reviewed yet is not a deficiency")
}

func TestCalculate_ValidationRate(t *testing.T) {
	s := Calculate(input(10, 0, 100, []int{100}, 3, 1))
	assert.Equal(t, 75.0, s.HumanValidation.Score)
}

func TestCalculate_EmptyRun(t *testing.T) {
	s := Calculate(Input{})

	assert.Equal(t, 0.0, s.TestPassRate.Score, "empty run is 0, never NaN")
	assert.Equal(t, Blocked, s.Recommendation)
}

func TestStatusFor_Breakpoints(t *testing.T) {
	tests := []struct {
		score  float64
		status ComponentStatus
	}{
		{95, StatusExcellent},
		{90, StatusExcellent},
		{89, StatusGood},
		{75, StatusGood},
		{74, StatusFair},
		{60, StatusFair},
		{59, StatusPoor},
		{0, StatusPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.score), "score %.0f", tt.score)
	}
}

func TestRenderReport(t *testing.T) {
	s := Calculate(input(7, 3, 60, nil, 1, 3))
	out := RenderReport(s)

	assert.Contains(t, out, "# Release Confidence Report")
	assert.Contains(t, out, "blocked")
	assert.Contains(t, out, "| Test Pass Rate |")
	assert.Contains(t, out, "## Suggested Improvements")
	assert.Contains(t, out, "Fix failing tests")
}
