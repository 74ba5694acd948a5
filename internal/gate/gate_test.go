package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/confidence"
)

func score(passRate, riskCov, testQuality float64, overall int) *confidence.Score {
	return &confidence.Score{
		TestPassRate:    confidence.ComponentScore{Score: passRate},
		RiskCoverage:    confidence.ComponentScore{Score: riskCov},
		TestQuality:     confidence.ComponentScore{Score: testQuality},
		HumanValidation: confidence.ComponentScore{Score: 100},
		Overall:         overall,
	}
}

func TestValidate_AllGatesPass(t *testing.T) {
	v := Validate(score(95, 90, 85, 92))

	assert.True(t, v.OverallPassed)
	assert.Empty(t, v.Blockers)
	assert.Empty(t, v.Warnings)
	require.Len(t, v.Gates, 4)
	for _, g := range v.Gates {
		assert.True(t, g.Passed, g.Name)
	}
}

func TestValidate_HighSeverityFailureWarnsOnly(t *testing.T) {
	// Test quality 65 misses its 70 threshold but is high severity.
	v := Validate(score(95, 90, 65, 92))

	assert.True(t, v.OverallPassed, "high severity failures must not block")
	assert.Empty(t, v.Blockers)
	require.Len(t, v.Warnings, 1)
	assert.Contains(t, v.Warnings[0], "Test Quality")
}

func TestValidate_CriticalFailureBlocks(t *testing.T) {
	// Pass rate 70 misses its critical 80 threshold.
	v := Validate(score(70, 90, 85, 92))

	assert.False(t, v.OverallPassed)
	require.Len(t, v.Blockers, 1)
	assert.Contains(t, v.Blockers[0], "Test Pass Rate")
}

func TestValidate_ThresholdBoundaries(t *testing.T) {
	v := Validate(score(80, 80, 70, 75))
	assert.True(t, v.OverallPassed, "meeting the threshold exactly passes")
	for _, g := range v.Gates {
		assert.True(t, g.Passed, g.Name)
	}
}

func TestValidate_GateSeverities(t *testing.T) {
	v := Validate(score(0, 0, 0, 0))

	require.Len(t, v.Gates, 4)
	assert.Equal(t, SeverityCritical, v.Gates[0].Severity)
	assert.Equal(t, SeverityCritical, v.Gates[1].Severity)
	assert.Equal(t, SeverityHigh, v.Gates[2].Severity)
	assert.Equal(t, SeverityHigh, v.Gates[3].Severity)
	assert.Len(t, v.Blockers, 2)
	assert.Len(t, v.Warnings, 2)
}

func TestRenderComment(t *testing.T) {
	s := score(70, 90, 65, 72)
	v := Validate(s)
	out := RenderComment(v, s)

	assert.Contains(t, out, "Test Validation Failed")
	assert.Contains(t, out, "| Gate | Status | Score | Threshold |")
	assert.Contains(t, out, "### Blockers")
	assert.Contains(t, out, "### Warnings")
	assert.Contains(t, out, "Human validation rate: 100.0")
}

func TestRenderComment_Passing(t *testing.T) {
	s := score(95, 90, 85, 92)
	out := RenderComment(Validate(s), s)

	assert.Contains(t, out, "Test Validation Passed")
	assert.NotContains(t, out, "### Blockers")
}
