package coverage

import (
	"fmt"
	"math"
	"sort"

	"testwright/internal/models"
	"testwright/internal/risk"
)

// FeatureTestMapping links a feature's risk classification to the
// tests (if any) that cover it.
type FeatureTestMapping struct {
	FeatureName    string              `json:"featureName"`
	Classification risk.Classification `json:"riskClassification"`
	TestFiles      []string            `json:"testFiles"`
	IsTested       bool                `json:"isTested"`
}

// LevelCoverage is the tested/total breakdown for a single risk level.
type LevelCoverage struct {
	Tested     int      `json:"tested"`
	Total      int      `json:"total"`
	Percentage float64  `json:"percentage"`
	Untested   []string `json:"untested"`
}

// GapPriority orders coverage gaps by urgency.
type GapPriority string

const (
	PriorityUrgent GapPriority = "urgent"
	PriorityHigh   GapPriority = "high"
	PriorityMedium GapPriority = "medium"
	PriorityLow    GapPriority = "low"
)

func (p GapPriority) rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// Gap is an untested feature annotated with urgency.
type Gap struct {
	FeatureName    string           `json:"featureName"`
	RiskLevel      models.RiskLevel `json:"riskLevel"`
	RiskScore      int              `json:"riskScore"`
	Priority       GapPriority      `json:"priority"`
	Recommendation string           `json:"recommendation"`
}

// Metrics aggregates coverage over a set of feature/test mappings.
type Metrics struct {
	ByLevel      map[models.RiskLevel]LevelCoverage `json:"byLevel"`
	Overall      float64                            `json:"overallPercentage"`
	RiskWeighted int                                `json:"riskWeightedCoverage"`
	Gaps         []Gap                              `json:"gaps"`
}

// Fixed per-level weights for the risk-weighted coverage blend.
var levelWeights = map[models.RiskLevel]float64{
	models.RiskCritical: 0.4,
	models.RiskHigh:     0.3,
	models.RiskMedium:   0.2,
	models.RiskLow:      0.1,
}

// Analyze computes coverage metrics from feature/test mappings.
// Empty risk buckets report 0%, never NaN.
func Analyze(mappings []FeatureTestMapping) *Metrics {
	m := &Metrics{ByLevel: make(map[models.RiskLevel]LevelCoverage)}

	for _, level := range models.Levels() {
		m.ByLevel[level] = LevelCoverage{}
	}

	tested := 0
	for _, fm := range mappings {
		lc := m.ByLevel[fm.Classification.Level]
		lc.Total++
		if fm.IsTested {
			lc.Tested++
			tested++
		} else {
			lc.Untested = append(lc.Untested, fm.FeatureName)
		}
		m.ByLevel[fm.Classification.Level] = lc
	}

	weighted := 0.0
	for level, lc := range m.ByLevel {
		if lc.Total > 0 {
			lc.Percentage = float64(lc.Tested) / float64(lc.Total) * 100
			m.ByLevel[level] = lc
		}
		weighted += levelWeights[level] * lc.Percentage
	}
	m.RiskWeighted = int(math.Round(weighted))

	if len(mappings) > 0 {
		m.Overall = float64(tested) / float64(len(mappings)) * 100
	}

	// Gaps hold every untested feature exactly once, ordered by
	// priority; a stable sort preserves discovery order within ties.
	for _, fm := range mappings {
		if fm.IsTested {
			continue
		}
		priority := gapPriority(fm.Classification)
		m.Gaps = append(m.Gaps, Gap{
			FeatureName:    fm.FeatureName,
			RiskLevel:      fm.Classification.Level,
			RiskScore:      fm.Classification.Score,
			Priority:       priority,
			Recommendation: recommendation(fm.FeatureName, priority),
		})
	}
	sort.SliceStable(m.Gaps, func(i, j int) bool {
		return m.Gaps[i].Priority.rank() < m.Gaps[j].Priority.rank()
	})

	return m
}

// gapPriority derives urgency from the risk level and score.
func gapPriority(cl risk.Classification) GapPriority {
	switch {
	case cl.Score >= 90 || cl.Level == models.RiskCritical:
		return PriorityUrgent
	case cl.Score >= 70 || cl.Level == models.RiskHigh:
		return PriorityHigh
	case cl.Score >= 50 || cl.Level == models.RiskMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func recommendation(featureName string, p GapPriority) string {
	switch p {
	case PriorityUrgent:
		return fmt.Sprintf("Generate and approve a test for %q before the next release", featureName)
	case PriorityHigh:
		return fmt.Sprintf("Schedule test generation for %q in the current cycle", featureName)
	case PriorityMedium:
		return fmt.Sprintf("Add %q to the test generation backlog", featureName)
	default:
		return fmt.Sprintf("Cover %q opportunistically", featureName)
	}
}

// HeatmapCell is one feature in the coverage heatmap.
type HeatmapCell struct {
	FeatureName string           `json:"featureName"`
	RiskLevel   models.RiskLevel `json:"riskLevel"`
	RiskScore   int              `json:"riskScore"`
	Tested      bool             `json:"tested"`
	TestCount   int              `json:"testCount"`
}

// Heatmap is a square-ish grid layout of per-feature coverage cells.
type Heatmap struct {
	Cells  []HeatmapCell `json:"cells"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
}

// BuildHeatmap transforms mappings into heatmap cells with a suggested
// grid: width = ceil(sqrt(n)), height = ceil(n/width).
func BuildHeatmap(mappings []FeatureTestMapping) *Heatmap {
	h := &Heatmap{Cells: make([]HeatmapCell, 0, len(mappings))}
	for _, fm := range mappings {
		h.Cells = append(h.Cells, HeatmapCell{
			FeatureName: fm.FeatureName,
			RiskLevel:   fm.Classification.Level,
			RiskScore:   fm.Classification.Score,
			Tested:      fm.IsTested,
			TestCount:   len(fm.TestFiles),
		})
	}
	if n := len(h.Cells); n > 0 {
		h.Width = int(math.Ceil(math.Sqrt(float64(n))))
		h.Height = (n + h.Width - 1) / h.Width
	}
	return h
}
