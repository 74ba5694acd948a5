package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/models"
	"testwright/internal/risk"
)

func mapping(name string, level models.RiskLevel, score int, tested bool) FeatureTestMapping {
	return FeatureTestMapping{
		FeatureName: name,
		Classification: risk.Classification{
			FeatureName: name,
			Level:       level,
			Score:       score,
		},
		IsTested: tested,
	}
}

func TestAnalyze_AllTested(t *testing.T) {
	m := Analyze([]FeatureTestMapping{
		mapping("Checkout", models.RiskCritical, 90, true),
		mapping("Login", models.RiskHigh, 75, true),
		mapping("Search", models.RiskMedium, 50, true),
		mapping("Footer", models.RiskLow, 20, true),
	})

	assert.Equal(t, 100, m.RiskWeighted)
	assert.Equal(t, 100.0, m.Overall)
	assert.Empty(t, m.Gaps)
}

func TestAnalyze_AllUntested(t *testing.T) {
	m := Analyze([]FeatureTestMapping{
		mapping("Checkout", models.RiskCritical, 90, false),
		mapping("Footer", models.RiskLow, 20, false),
	})

	assert.Equal(t, 0, m.RiskWeighted)
	assert.Equal(t, 0.0, m.Overall)
	for _, level := range models.Levels() {
		assert.Equal(t, 0.0, m.ByLevel[level].Percentage, "level %s", level)
	}
	assert.Len(t, m.Gaps, 2)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	m := Analyze(nil)

	assert.Equal(t, 0, m.RiskWeighted)
	assert.Equal(t, 0.0, m.Overall)
	assert.Empty(t, m.Gaps)
}

// One critical untested plus three tested low features: only the
// critical and low buckets are populated, so the weighted blend is
// 0.4*0 + 0.1*100 = 10.
func TestAnalyze_CriticalUntestedLowTested(t *testing.T) {
	m := Analyze([]FeatureTestMapping{
		mapping("Checkout", models.RiskCritical, 92, false),
		mapping("Footer", models.RiskLow, 20, true),
		mapping("About", models.RiskLow, 20, true),
		mapping("FAQ", models.RiskLow, 20, true),
	})

	assert.Equal(t, 10, m.RiskWeighted)
	assert.Equal(t, 75.0, m.Overall)

	require.Len(t, m.Gaps, 1)
	assert.Equal(t, "Checkout", m.Gaps[0].FeatureName)
	assert.Equal(t, PriorityUrgent, m.Gaps[0].Priority)
}

func TestAnalyze_WeightedBlend(t *testing.T) {
	// critical 50%, high 100%, medium 0%, low 100%
	m := Analyze([]FeatureTestMapping{
		mapping("A", models.RiskCritical, 90, true),
		mapping("B", models.RiskCritical, 90, false),
		mapping("C", models.RiskHigh, 75, true),
		mapping("D", models.RiskMedium, 50, false),
		mapping("E", models.RiskLow, 20, true),
	})

	// round(0.4*50 + 0.3*100 + 0.2*0 + 0.1*100) = round(60) = 60
	assert.Equal(t, 60, m.RiskWeighted)
}

func TestAnalyze_GapOrderingStable(t *testing.T) {
	m := Analyze([]FeatureTestMapping{
		mapping("LowOne", models.RiskLow, 20, false),
		mapping("HighOne", models.RiskHigh, 75, false),
		mapping("CriticalOne", models.RiskCritical, 95, false),
		mapping("HighTwo", models.RiskHigh, 72, false),
	})

	names := make([]string, 0, len(m.Gaps))
	for _, g := range m.Gaps {
		names = append(names, g.FeatureName)
	}
	assert.Equal(t, []string{"CriticalOne", "HighOne", "HighTwo", "LowOne"}, names,
		"urgent first, ties keep discovery order")
}

func TestGapPriority(t *testing.T) {
	tests := []struct {
		level    models.RiskLevel
		score    int
		priority GapPriority
	}{
		{models.RiskCritical, 60, PriorityUrgent}, // level forces urgent
		{models.RiskMedium, 92, PriorityUrgent},   // score forces urgent
		{models.RiskHigh, 65, PriorityHigh},
		{models.RiskLow, 71, PriorityHigh},
		{models.RiskMedium, 45, PriorityMedium},
		{models.RiskLow, 55, PriorityMedium},
		{models.RiskLow, 20, PriorityLow},
	}
	for _, tt := range tests {
		cl := risk.Classification{Level: tt.level, Score: tt.score}
		assert.Equal(t, tt.priority, gapPriority(cl), "level=%s score=%d", tt.level, tt.score)
	}
}

func TestBuildHeatmap(t *testing.T) {
	mappings := []FeatureTestMapping{
		mapping("A", models.RiskCritical, 90, true),
		mapping("B", models.RiskHigh, 75, false),
		mapping("C", models.RiskMedium, 50, true),
		mapping("D", models.RiskLow, 20, true),
		mapping("E", models.RiskLow, 20, false),
	}
	mappings[0].TestFiles = []string{"a.cy.js", "a2.cy.js"}

	h := BuildHeatmap(mappings)
	require.Len(t, h.Cells, 5)
	assert.Equal(t, 3, h.Width, "width = ceil(sqrt(5))")
	assert.Equal(t, 2, h.Height, "height = ceil(5/3)")
	assert.Equal(t, 2, h.Cells[0].TestCount)
	assert.False(t, h.Cells[1].Tested)
}

func TestBuildHeatmap_Empty(t *testing.T) {
	h := BuildHeatmap(nil)
	assert.Empty(t, h.Cells)
	assert.Equal(t, 0, h.Width)
	assert.Equal(t, 0, h.Height)
}

func TestRenderReport(t *testing.T) {
	m := Analyze([]FeatureTestMapping{
		mapping("Checkout", models.RiskCritical, 92, false),
		mapping("Footer", models.RiskLow, 20, true),
	})
	out := RenderReport(m)

	assert.Contains(t, out, "# Test Coverage Report")
	assert.Contains(t, out, "Risk-weighted coverage")
	assert.Contains(t, out, "## Urgent Gaps")
	assert.Contains(t, out, "Checkout")
}
