package prioritize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/models"
)

func daysAgo(now time.Time, days int) *time.Time {
	t := now.Add(-time.Duration(days) * 24 * time.Hour)
	return &t
}

func TestPlan_ByRisk(t *testing.T) {
	now := time.Now()
	tests := []TestInfo{
		{Name: "footer.cy.js", RiskLevel: models.RiskLow},
		{Name: "checkout.cy.js", RiskLevel: models.RiskCritical},
		{Name: "search.cy.js", RiskLevel: models.RiskMedium},
		{Name: "login.cy.js", RiskLevel: models.RiskHigh},
	}

	plan := planAt(tests, ByRisk, now)
	require.Len(t, plan, 4)

	assert.Equal(t, "checkout.cy.js", plan[0].Name)
	assert.Equal(t, 100.0, plan[0].Priority)
	assert.Equal(t, 1, plan[0].ExecutionOrder)
	assert.Equal(t, "login.cy.js", plan[1].Name)
	assert.Equal(t, 75.0, plan[1].Priority)
	assert.Equal(t, "footer.cy.js", plan[3].Name)
	assert.Equal(t, 4, plan[3].ExecutionOrder)
}

func TestPlan_ByRecency(t *testing.T) {
	now := time.Now()
	tests := []TestInfo{
		{Name: "stale.cy.js", LastModified: daysAgo(now, 30)},
		{Name: "fresh.cy.js", LastModified: daysAgo(now, 2)},
		{Name: "unknown.cy.js"},
	}

	plan := planAt(tests, ByRecency, now)

	assert.Equal(t, "fresh.cy.js", plan[0].Name)
	assert.Equal(t, 90.0, plan[0].Priority, "2 days ago = 100 - 2*5")
	assert.Equal(t, "stale.cy.js", plan[1].Name)
	assert.Equal(t, 0.0, plan[1].Priority, "30 days ago bottoms out at 0")
	assert.Equal(t, 0.0, plan[2].Priority, "no modification date = maximally stale")
}

func TestPlan_ByFailureRate(t *testing.T) {
	now := time.Now()
	tests := []TestInfo{
		{Name: "solid.cy.js", FailureRate: 0.05},
		{Name: "flaky.cy.js", FailureRate: 0.42},
	}

	plan := planAt(tests, ByFailureRate, now)

	assert.Equal(t, "flaky.cy.js", plan[0].Name)
	assert.Equal(t, 42.0, plan[0].Priority)
	assert.Equal(t, 5.0, plan[1].Priority)
}

func TestPlan_Smart(t *testing.T) {
	now := time.Now()
	ti := TestInfo{
		Name:          "checkout.cy.js",
		RiskLevel:     models.RiskCritical,
		LastModified:  daysAgo(now, 2),
		FailureRate:   0.5,
		ExecutionTime: 2500 * time.Millisecond,
	}

	plan := planAt([]TestInfo{ti}, Smart, now)

	// 0.4*100 + 0.3*90 + 0.2*50 + 0.1*75 = 84.5
	assert.InDelta(t, 84.5, plan[0].Priority, 0.001)
}

func TestPlan_SmartUnknownDuration(t *testing.T) {
	now := time.Now()
	ti := TestInfo{Name: "a.cy.js", RiskLevel: models.RiskLow}

	plan := planAt([]TestInfo{ti}, Smart, now)

	// 0.4*25 + 0.3*0 + 0.2*0 + 0.1*50 = 15
	assert.InDelta(t, 15.0, plan[0].Priority, 0.001)
}

func TestPlan_SmartTieBreaksByRiskSeverity(t *testing.T) {
	now := time.Now()
	// Same blended score, different levels: the low-risk test compensates
	// with recency so both land on the same priority.
	tests := []TestInfo{
		{Name: "low.cy.js", RiskLevel: models.RiskLow, LastModified: daysAgo(now, 0)},
		{Name: "critical.cy.js", RiskLevel: models.RiskCritical, LastModified: daysAgo(now, 20)},
	}
	// low: 0.4*25 + 0.3*100 + 0.1*50 = 45; critical: 0.4*100 + 0.3*0 + 0.1*50 = 45

	plan := planAt(tests, Smart, now)

	require.InDelta(t, plan[0].Priority, plan[1].Priority, 0.001)
	assert.Equal(t, "critical.cy.js", plan[0].Name, "ties go to the more severe risk level")
}

func TestExecutionScore(t *testing.T) {
	assert.Equal(t, 50.0, executionScore(TestInfo{}), "unknown duration is neutral")
	assert.InDelta(t, 100.0, executionScore(TestInfo{ExecutionTime: time.Millisecond}), 0.05, "instant test scores nearly full")
	assert.Equal(t, 50.0, executionScore(TestInfo{ExecutionTime: 5 * time.Second}))
	assert.Equal(t, 0.0, executionScore(TestInfo{ExecutionTime: 15 * time.Second}), "slow tests bottom out at 0")
}

func TestFilterForContext(t *testing.T) {
	tests := []TestInfo{
		{Name: "a", RiskLevel: models.RiskCritical},
		{Name: "b", RiskLevel: models.RiskHigh},
		{Name: "c", RiskLevel: models.RiskMedium},
		{Name: "d", RiskLevel: models.RiskLow},
	}

	assert.Len(t, FilterForContext(tests, "pr"), 2)
	assert.Len(t, FilterForContext(tests, "merge"), 3)
	assert.Len(t, FilterForContext(tests, "nightly"), 4)
	assert.Len(t, FilterForContext(tests, "release"), 4)
	assert.Len(t, FilterForContext(tests, ""), 4)
}

func TestPlan_RenumbersAfterFilter(t *testing.T) {
	now := time.Now()
	tests := FilterForContext([]TestInfo{
		{Name: "a", RiskLevel: models.RiskCritical},
		{Name: "b", RiskLevel: models.RiskLow},
		{Name: "c", RiskLevel: models.RiskHigh},
	}, "pr")

	plan := planAt(tests, ByRisk, now)
	require.Len(t, plan, 2)
	assert.Equal(t, 1, plan[0].ExecutionOrder)
	assert.Equal(t, 2, plan[1].ExecutionOrder)
}
