package rejection

import (
	"sort"
	"time"

	"testwright/internal/models"
)

// trendDays is the fixed length of the daily trend series.
const trendDays = 30

// PatternStat aggregates one rejection reason across all decisions.
type PatternStat struct {
	Reason     models.RejectionReason `json:"reason"`
	Count      int                    `json:"count"`
	Percentage float64                `json:"percentage"`
	Examples   []string               `json:"examples"` // up to 3 reviewer comments
}

// TrendDay is one calendar day in the rejection trend series.
type TrendDay struct {
	Date          string  `json:"date"` // local calendar date, YYYY-MM-DD
	Rejections    int     `json:"rejectionCount"`
	Approvals     int     `json:"approvalCount"`
	RejectionRate float64 `json:"rejectionRate"`
}

// Stats is the derived view over the full decision history plus the
// current session. The history itself is append-only and never mutated.
type Stats struct {
	TotalDecisions  int          `json:"totalDecisions"`
	TotalRejections int          `json:"totalRejections"`
	RejectionRate   float64      `json:"rejectionRate"`
	CommonPatterns  []PatternStat `json:"commonPatterns"`
	Trend           []TrendDay   `json:"trend"` // exactly 30 entries, oldest first
}

// Insight is one advisory finding for improving generation prompts.
type Insight struct {
	Reason   models.RejectionReason `json:"reason"`
	Count    int                    `json:"count"`
	Examples []string               `json:"examples"` // up to 2
	Advice   string                 `json:"advice"`
}

// CalculateStats derives rejection statistics from the current
// session's decisions plus the persisted history.
func CalculateStats(session, history []models.Decision) *Stats {
	return calculateStatsAt(session, history, time.Now())
}

func calculateStatsAt(session, history []models.Decision, now time.Time) *Stats {
	all := make([]models.Decision, 0, len(session)+len(history))
	all = append(all, history...)
	all = append(all, session...)

	s := &Stats{TotalDecisions: len(all)}

	counts := make(map[models.RejectionReason]int)
	examples := make(map[models.RejectionReason][]string)
	for _, d := range all {
		if d.Approved {
			continue
		}
		s.TotalRejections++
		counts[d.RejectionReason]++
		if d.Comments != "" && len(examples[d.RejectionReason]) < 3 {
			examples[d.RejectionReason] = append(examples[d.RejectionReason], d.Comments)
		}
	}
	if s.TotalDecisions > 0 {
		s.RejectionRate = float64(s.TotalRejections) / float64(s.TotalDecisions) * 100
	}

	// Enumerate reasons in their declared order so equal counts sort
	// deterministically, then order by descending count.
	for _, reason := range models.RejectionReasons() {
		if counts[reason] == 0 {
			continue
		}
		s.CommonPatterns = append(s.CommonPatterns, PatternStat{
			Reason:     reason,
			Count:      counts[reason],
			Percentage: float64(counts[reason]) / float64(s.TotalRejections) * 100,
			Examples:   examples[reason],
		})
	}
	sort.SliceStable(s.CommonPatterns, func(i, j int) bool {
		return s.CommonPatterns[i].Count > s.CommonPatterns[j].Count
	})

	s.Trend = trendSeries(all, now)
	return s
}

// trendSeries buckets decisions into the preceding 30 calendar days,
// oldest first. Matching is by local date string, not a rolling
// 24-hour window; days with no decisions report rate 0.
func trendSeries(decisions []models.Decision, now time.Time) []TrendDay {
	byDate := make(map[string]*TrendDay)
	series := make([]TrendDay, 0, trendDays)

	for i := trendDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		series = append(series, TrendDay{Date: date})
		byDate[date] = &series[len(series)-1]
	}

	for _, d := range decisions {
		day, ok := byDate[d.ReviewedAt.Local().Format("2006-01-02")]
		if !ok {
			continue
		}
		if d.Approved {
			day.Approvals++
		} else {
			day.Rejections++
		}
	}

	for i := range series {
		if total := series[i].Rejections + series[i].Approvals; total > 0 {
			series[i].RejectionRate = float64(series[i].Rejections) / float64(total) * 100
		}
	}
	return series
}

// ImprovementInsights ranks the top three rejection reasons and
// attaches up to two example comments each. Advisory text only.
func ImprovementInsights(history []models.Decision) []Insight {
	stats := CalculateStats(nil, history)

	var out []Insight
	for _, p := range stats.CommonPatterns {
		if len(out) == 3 {
			break
		}
		examples := p.Examples
		if len(examples) > 2 {
			examples = examples[:2]
		}
		out = append(out, Insight{
			Reason:   p.Reason,
			Count:    p.Count,
			Examples: examples,
			Advice:   adviceFor(p.Reason),
		})
	}
	return out
}

func adviceFor(reason models.RejectionReason) string {
	switch reason {
	case models.ReasonWrongSelectors:
		return "Include the discovered selector list verbatim in the generation prompt"
	case models.ReasonMissingAssertions:
		return "Require at least two value assertions per test case in the prompt"
	case models.ReasonIncorrectFlow:
		return "Add the feature description and API endpoints to the prompt context"
	case models.ReasonFlakyPattern:
		return "Forbid fixed waits; instruct the model to wait on conditions"
	case models.ReasonHardcodedData:
		return "Instruct the model to use fixtures instead of literal values"
	case models.ReasonDuplicateCoverage:
		return "Supply the list of already approved tests to avoid duplicates"
	case models.ReasonWrongFeature:
		return "Tighten feature naming in discovery records"
	case models.ReasonPoorNaming:
		return "Require descriptive test titles of at least 20 characters"
	case models.ReasonMissingEdgeCases:
		return "Ask explicitly for empty, invalid, and boundary input cases"
	default:
		return "Review the example comments for recurring themes"
	}
}
