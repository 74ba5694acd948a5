package risk

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"testwright/internal/models"
)

// Rating is a qualitative input level. BusinessImpact additionally
// allows "critical"; complexity and frequency use high/medium/low.
type Rating string

const (
	RatingCritical Rating = "critical"
	RatingHigh     Rating = "high"
	RatingMedium   Rating = "medium"
	RatingLow      Rating = "low"
)

// Classification is the computed risk of a single feature.
// Computed on demand, never persisted directly.
type Classification struct {
	FeatureName         string           `json:"featureName"`
	Level               models.RiskLevel `json:"riskLevel"`
	Score               int              `json:"riskScore"`
	BusinessImpact      Rating           `json:"businessImpact"`
	TechnicalComplexity Rating           `json:"technicalComplexity"`
	ChangeFrequency     Rating           `json:"changeFrequency"`
}

// PatternConfig is one ordered classification rule. The first pattern
// matching a feature name wins (case-insensitive).
type PatternConfig struct {
	Pattern             string           `yaml:"pattern"`
	Level               models.RiskLevel `yaml:"level,omitempty"` // explicit override, skips score-derived level
	BusinessImpact      Rating           `yaml:"businessImpact"`
	TechnicalComplexity Rating           `yaml:"technicalComplexity"`
	ChangeFrequency     Rating           `yaml:"changeFrequency"`
}

// Config holds the classifier's pattern table and fallback behavior.
type Config struct {
	DefaultLevel   models.RiskLevel `yaml:"defaultLevel"`
	StrictPatterns bool             `yaml:"strictPatterns"` // fail on malformed regex instead of skipping
	Patterns       []PatternConfig  `yaml:"patterns"`
}

// Context overrides the qualitative inputs for a single classification.
type Context struct {
	Level               models.RiskLevel
	BusinessImpact      Rating
	TechnicalComplexity Rating
	ChangeFrequency     Rating
}

// Fixed blend weights and score breakpoints.
const (
	weightImpact     = 0.40
	weightComplexity = 0.35
	weightFrequency  = 0.25

	breakCritical = 85
	breakHigh     = 65
	breakMedium   = 40
)

// DefaultConfig returns the built-in pattern table used when no risk
// config file is supplied.
func DefaultConfig() Config {
	return Config{
		DefaultLevel: models.RiskMedium,
		Patterns: []PatternConfig{
			{Pattern: `payment|checkout|billing|purchase`, BusinessImpact: RatingCritical, TechnicalComplexity: RatingHigh, ChangeFrequency: RatingHigh},
			{Pattern: `login|auth|signin|signup|password|session`, BusinessImpact: RatingCritical, TechnicalComplexity: RatingHigh, ChangeFrequency: RatingMedium},
			{Pattern: `cart|order|inventory`, BusinessImpact: RatingHigh, TechnicalComplexity: RatingHigh, ChangeFrequency: RatingHigh},
			{Pattern: `admin|permission|role`, BusinessImpact: RatingHigh, TechnicalComplexity: RatingMedium, ChangeFrequency: RatingLow},
			{Pattern: `profile|account|user`, BusinessImpact: RatingHigh, TechnicalComplexity: RatingMedium, ChangeFrequency: RatingMedium},
			{Pattern: `search|filter|sort|pagination`, BusinessImpact: RatingMedium, TechnicalComplexity: RatingMedium, ChangeFrequency: RatingHigh},
			{Pattern: `about|help|faq|footer|static`, BusinessImpact: RatingLow, TechnicalComplexity: RatingLow, ChangeFrequency: RatingLow},
		},
	}
}

type compiledPattern struct {
	re  *regexp.Regexp
	cfg PatternConfig
}

// Classifier maps feature names to risk classifications.
type Classifier struct {
	cfg      Config
	patterns []compiledPattern

	// Skipped holds the patterns dropped due to compile errors, for
	// the caller to surface. A bad entry never aborts classification.
	Skipped []string
}

// NewClassifier compiles the configured patterns. Malformed patterns
// are skipped and recorded in Skipped unless StrictPatterns is set.
func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = models.RiskMedium
	}

	c := &Classifier{cfg: cfg}
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(`(?i)` + p.Pattern)
		if err != nil {
			if cfg.StrictPatterns {
				return nil, fmt.Errorf("compile risk pattern %q: %w", p.Pattern, err)
			}
			c.Skipped = append(c.Skipped, p.Pattern)
			continue
		}
		c.patterns = append(c.patterns, compiledPattern{re: re, cfg: p})
	}
	return c, nil
}

// Classify computes the risk classification for a feature name.
// An optional Context overrides the pattern-derived inputs.
func (c *Classifier) Classify(featureName string, ctx *Context) Classification {
	impact, complexity, frequency := RatingMedium, RatingMedium, RatingMedium
	var matchedLevel models.RiskLevel
	matched := false

	for _, p := range c.patterns {
		if p.re.MatchString(featureName) {
			impact = p.cfg.BusinessImpact
			complexity = p.cfg.TechnicalComplexity
			frequency = p.cfg.ChangeFrequency
			matchedLevel = p.cfg.Level
			matched = true
			break
		}
	}

	if ctx != nil {
		if ctx.BusinessImpact != "" {
			impact = ctx.BusinessImpact
		}
		if ctx.TechnicalComplexity != "" {
			complexity = ctx.TechnicalComplexity
		}
		if ctx.ChangeFrequency != "" {
			frequency = ctx.ChangeFrequency
		}
	}

	score := int(math.Round(
		weightImpact*float64(impactPoints(impact)) +
			weightComplexity*float64(ratingPoints(complexity)) +
			weightFrequency*float64(ratingPoints(frequency))))

	level := levelForScore(score)
	switch {
	case ctx != nil && ctx.Level != "":
		level = ctx.Level
	case matchedLevel != "":
		level = matchedLevel
	case !matched && ctx == nil:
		level = c.cfg.DefaultLevel
	}

	return Classification{
		FeatureName:         featureName,
		Level:               level,
		Score:               score,
		BusinessImpact:      impact,
		TechnicalComplexity: complexity,
		ChangeFrequency:     frequency,
	}
}

// ClassifyFeatures classifies a batch of feature names in input order.
func (c *Classifier) ClassifyFeatures(names []string) []Classification {
	out := make([]Classification, 0, len(names))
	for _, name := range names {
		out = append(out, c.Classify(name, nil))
	}
	return out
}

// Matrix renders classifications grouped into the four risk levels,
// highest severity first, scores descending within a level.
func Matrix(classifications []Classification) string {
	byLevel := make(map[models.RiskLevel][]Classification)
	for _, cl := range classifications {
		byLevel[cl.Level] = append(byLevel[cl.Level], cl)
	}

	var sb strings.Builder
	sb.WriteString("Risk Matrix\n===========\n")
	for _, level := range models.Levels() {
		group := byLevel[level]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Score > group[j].Score })

		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", strings.ToUpper(string(level)), len(group)))
		if len(group) == 0 {
			sb.WriteString("  (none)\n")
			continue
		}
		for _, cl := range group {
			sb.WriteString(fmt.Sprintf("  %-30s score %3d  impact=%-8s complexity=%-6s frequency=%s\n",
				cl.FeatureName, cl.Score, cl.BusinessImpact, cl.TechnicalComplexity, cl.ChangeFrequency))
		}
	}
	return sb.String()
}

// impactPoints maps business impact to points. Impact is the only
// input that allows "critical".
func impactPoints(r Rating) int {
	switch r {
	case RatingCritical:
		return 100
	case RatingHigh:
		return 80
	case RatingMedium:
		return 50
	case RatingLow:
		return 20
	default:
		return 50
	}
}

// ratingPoints maps complexity/frequency to points.
func ratingPoints(r Rating) int {
	switch r {
	case RatingHigh, RatingCritical:
		return 80
	case RatingMedium:
		return 50
	case RatingLow:
		return 20
	default:
		return 50
	}
}

// levelForScore derives a risk level from the fixed breakpoints.
func levelForScore(score int) models.RiskLevel {
	switch {
	case score >= breakCritical:
		return models.RiskCritical
	case score >= breakHigh:
		return models.RiskHigh
	case score >= breakMedium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
