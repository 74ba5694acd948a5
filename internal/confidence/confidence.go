package confidence

import (
	"fmt"
	"math"

	"testwright/internal/coverage"
	"testwright/internal/models"
	"testwright/internal/quality"
)

// ComponentStatus labels a component score against fixed breakpoints.
type ComponentStatus string

const (
	StatusExcellent ComponentStatus = "excellent"
	StatusGood      ComponentStatus = "good"
	StatusFair      ComponentStatus = "fair"
	StatusPoor      ComponentStatus = "poor"
)

// Recommendation is the release tier derived from the overall score.
type Recommendation string

const (
	ReadyToRelease   Recommendation = "ready-to-release"
	ReadyWithCaution Recommendation = "ready-with-caution"
	NeedsImprovement Recommendation = "needs-improvement"
	NotReady         Recommendation = "not-ready"
	Blocked          Recommendation = "blocked"
)

// ComponentScore is one weighted input to the overall confidence score.
type ComponentScore struct {
	Score         float64         `json:"score"`
	Weight        float64         `json:"weight"`
	WeightedScore float64         `json:"weightedScore"`
	Status        ComponentStatus `json:"status"`
}

// ValidationStats counts human review outcomes for generated tests.
type ValidationStats struct {
	Approved int
	Rejected int
}

// Input carries the four upstream signals the scorer blends.
type Input struct {
	Run         models.TestRunStats
	Coverage    *coverage.Metrics
	Quality     []*quality.Vector
	Validations ValidationStats
}

// Score is the layered release-confidence result.
type Score struct {
	TestPassRate    ComponentScore `json:"testPassRate"`
	RiskCoverage    ComponentScore `json:"riskCoverage"`
	TestQuality     ComponentScore `json:"testQuality"`
	HumanValidation ComponentScore `json:"humanValidationRate"`

	Overall        int            `json:"overallScore"`
	Recommendation Recommendation `json:"recommendation"`
	Details        string         `json:"details"`
}

// Component weights and the blocking thresholds.
const (
	weightPassRate   = 0.4
	weightCoverage   = 0.3
	weightQuality    = 0.2
	weightValidation = 0.1

	blockPassRateBelow = 80
	blockCoverageBelow = 70
)

// Calculate blends the four upstream signals into a single confidence
// score. Pure and deterministic; degraded inputs lower scores rather
// than erroring.
func Calculate(in Input) *Score {
	passRate := in.Run.PassRate()

	// The risk coverage signal is already risk-weighted; weighting it
	// again here is intentional - risk counts once in coverage
	// composition and once in release gating.
	riskCov := 0.0
	if in.Coverage != nil {
		riskCov = float64(in.Coverage.RiskWeighted)
	}

	testQuality := 0.0
	for _, v := range in.Quality {
		testQuality += float64(v.Overall)
	}
	if n := len(in.Quality); n > 0 {
		testQuality /= float64(n)
	}

	// No AI-generated tests reviewed yet is not a deficiency.
	validation := 100.0
	if total := in.Validations.Approved + in.Validations.Rejected; total > 0 {
		validation = float64(in.Validations.Approved) / float64(total) * 100
	}

	s := &Score{
		TestPassRate:    component(passRate, weightPassRate),
		RiskCoverage:    component(riskCov, weightCoverage),
		TestQuality:     component(testQuality, weightQuality),
		HumanValidation: component(validation, weightValidation),
	}
	if len(in.Quality) == 0 {
		s.TestQuality.Status = StatusPoor
	}

	s.Overall = int(math.Round(
		s.TestPassRate.WeightedScore +
			s.RiskCoverage.WeightedScore +
			s.TestQuality.WeightedScore +
			s.HumanValidation.WeightedScore))

	// The blocking rule runs before tiering: a numerically good
	// overall score can still be forced to blocked.
	switch {
	case passRate < blockPassRateBelow || riskCov < blockCoverageBelow:
		s.Recommendation = Blocked
	case s.Overall >= 85:
		s.Recommendation = ReadyToRelease
	case s.Overall >= 70:
		s.Recommendation = ReadyWithCaution
	case s.Overall >= 60:
		s.Recommendation = NeedsImprovement
	default:
		s.Recommendation = NotReady
	}

	s.Details = details(s, passRate, riskCov)
	return s
}

func component(score, weight float64) ComponentScore {
	return ComponentScore{
		Score:         score,
		Weight:        weight,
		WeightedScore: score * weight,
		Status:        statusFor(score),
	}
}

func statusFor(score float64) ComponentStatus {
	switch {
	case score >= 90:
		return StatusExcellent
	case score >= 75:
		return StatusGood
	case score >= 60:
		return StatusFair
	default:
		return StatusPoor
	}
}

func details(s *Score, passRate, riskCov float64) string {
	switch s.Recommendation {
	case Blocked:
		if passRate < blockPassRateBelow {
			return fmt.Sprintf("blocked: test pass rate %.1f%% is below the %d%% floor", passRate, blockPassRateBelow)
		}
		return fmt.Sprintf("blocked: risk coverage %.0f%% is below the %d%% floor", riskCov, blockCoverageBelow)
	case ReadyToRelease:
		return fmt.Sprintf("confidence %d/100: all signals within release thresholds", s.Overall)
	default:
		return fmt.Sprintf("confidence %d/100: see component breakdown", s.Overall)
	}
}
