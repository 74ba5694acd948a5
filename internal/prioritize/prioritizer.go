package prioritize

import (
	"math"
	"sort"
	"time"

	"testwright/internal/models"
)

// Strategy selects how tests are ranked into an execution plan.
type Strategy string

const (
	ByRisk        Strategy = "by-risk"
	ByRecency     Strategy = "by-recency"
	ByFailureRate Strategy = "by-failure-rate"
	Smart         Strategy = "smart"
)

// Strategies lists the supported prioritization strategies.
func Strategies() []Strategy {
	return []Strategy{ByRisk, ByRecency, ByFailureRate, Smart}
}

// TestInfo is the metadata the prioritizer ranks on.
type TestInfo struct {
	Name          string           `json:"name"`
	FeatureName   string           `json:"featureName"`
	RiskLevel     models.RiskLevel `json:"riskLevel"`
	LastModified  *time.Time       `json:"lastModified,omitempty"`
	FailureRate   float64          `json:"failureRate"` // 0..1
	ExecutionTime time.Duration    `json:"executionTime"` // 0 = unknown
}

// TestPriority is one ranked entry in an execution plan.
// ExecutionOrder is 1-based: 1 runs first.
type TestPriority struct {
	TestInfo
	Priority       float64 `json:"priority"`
	ExecutionOrder int     `json:"executionOrder"`
}

// Fixed per-level weights for risk-based prioritization.
var riskWeights = map[models.RiskLevel]float64{
	models.RiskCritical: 100,
	models.RiskHigh:     75,
	models.RiskMedium:   50,
	models.RiskLow:      25,
}

// executionBaseline is the duration at which a test loses half the
// execution-time score in the smart blend.
const executionBaseline = 5 * time.Second

// Plan ranks tests with the given strategy and renumbers
// ExecutionOrder 1..N.
func Plan(tests []TestInfo, strategy Strategy) []TestPriority {
	return planAt(tests, strategy, time.Now())
}

func planAt(tests []TestInfo, strategy Strategy, now time.Time) []TestPriority {
	plan := make([]TestPriority, 0, len(tests))
	for _, ti := range tests {
		plan = append(plan, TestPriority{
			TestInfo: ti,
			Priority: priorityFor(ti, strategy, now),
		})
	}

	sort.SliceStable(plan, func(i, j int) bool {
		if plan[i].Priority != plan[j].Priority {
			return plan[i].Priority > plan[j].Priority
		}
		if strategy == Smart {
			return plan[i].RiskLevel.Severity() < plan[j].RiskLevel.Severity()
		}
		return false
	})

	for i := range plan {
		plan[i].ExecutionOrder = i + 1
	}
	return plan
}

func priorityFor(ti TestInfo, strategy Strategy, now time.Time) float64 {
	switch strategy {
	case ByRecency:
		return recencyScore(ti, now)
	case ByFailureRate:
		return math.Round(ti.FailureRate * 100)
	case Smart:
		return 0.4*riskWeights[ti.RiskLevel] +
			0.3*recencyScore(ti, now) +
			0.2*math.Round(ti.FailureRate*100) +
			0.1*executionScore(ti)
	default: // ByRisk
		return riskWeights[ti.RiskLevel]
	}
}

// recencyScore rewards recently modified tests. Tests with no
// modification date are treated as maximally stale.
func recencyScore(ti TestInfo, now time.Time) float64 {
	if ti.LastModified == nil {
		return 0
	}
	days := now.Sub(*ti.LastModified).Hours() / 24
	return math.Max(0, 100-math.Floor(days)*5)
}

// executionScore rewards faster tests relative to the 5s baseline.
// Unknown duration scores the neutral 50.
func executionScore(ti TestInfo) float64 {
	if ti.ExecutionTime <= 0 {
		return 50
	}
	ms := float64(ti.ExecutionTime.Milliseconds())
	return math.Max(0, 100-(ms/float64(executionBaseline.Milliseconds()))*50)
}

// FilterForContext narrows the candidate set by CI context before
// prioritization: pr keeps critical+high, merge adds medium,
// nightly and release keep everything. Unknown contexts keep
// everything. This is a set intersection, not a scoring strategy.
func FilterForContext(tests []TestInfo, ciContext string) []TestInfo {
	var keep map[models.RiskLevel]bool
	switch ciContext {
	case "pr":
		keep = map[models.RiskLevel]bool{models.RiskCritical: true, models.RiskHigh: true}
	case "merge":
		keep = map[models.RiskLevel]bool{models.RiskCritical: true, models.RiskHigh: true, models.RiskMedium: true}
	default: // nightly, release, unknown
		return tests
	}

	var out []TestInfo
	for _, ti := range tests {
		if keep[ti.RiskLevel] {
			out = append(out, ti)
		}
	}
	return out
}
