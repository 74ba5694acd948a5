package risk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testwright/internal/models"
)

func TestLevelForScore_Breakpoints(t *testing.T) {
	tests := []struct {
		score int
		level models.RiskLevel
	}{
		{100, models.RiskCritical},
		{85, models.RiskCritical},
		{84, models.RiskHigh},
		{65, models.RiskHigh},
		{64, models.RiskMedium},
		{40, models.RiskMedium},
		{39, models.RiskLow},
		{0, models.RiskLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, levelForScore(tt.score), "score %d", tt.score)
	}
}

func TestClassify_WeightedBlend(t *testing.T) {
	c, err := NewClassifier(Config{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		ctx   Context
		score int
		level models.RiskLevel
	}{
		{"all high", Context{BusinessImpact: RatingHigh, TechnicalComplexity: RatingHigh, ChangeFrequency: RatingHigh}, 80, models.RiskHigh},
		{"critical impact", Context{BusinessImpact: RatingCritical, TechnicalComplexity: RatingHigh, ChangeFrequency: RatingHigh}, 88, models.RiskCritical},
		{"all medium", Context{BusinessImpact: RatingMedium, TechnicalComplexity: RatingMedium, ChangeFrequency: RatingMedium}, 50, models.RiskMedium},
		{"all low", Context{BusinessImpact: RatingLow, TechnicalComplexity: RatingLow, ChangeFrequency: RatingLow}, 20, models.RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := c.Classify("some feature", &tt.ctx)
			assert.Equal(t, tt.score, cl.Score)
			assert.Equal(t, tt.level, cl.Level)
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	cfg := Config{
		Patterns: []PatternConfig{
			{Pattern: `checkout`, BusinessImpact: RatingCritical, TechnicalComplexity: RatingHigh, ChangeFrequency: RatingHigh},
			{Pattern: `check`, BusinessImpact: RatingLow, TechnicalComplexity: RatingLow, ChangeFrequency: RatingLow},
		},
	}
	c, err := NewClassifier(cfg)
	require.NoError(t, err)

	cl := c.Classify("Checkout Page", nil)
	assert.Equal(t, RatingCritical, cl.BusinessImpact, "earlier pattern must win")
	assert.Equal(t, models.RiskCritical, cl.Level)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c, err := NewClassifier(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, c.Classify("User Login", nil).Level, c.Classify("user LOGIN", nil).Level)
}

func TestClassify_DefaultLevelWhenUnmatched(t *testing.T) {
	c, err := NewClassifier(Config{DefaultLevel: models.RiskLow})
	require.NoError(t, err)

	cl := c.Classify("mystery widget", nil)
	assert.Equal(t, models.RiskLow, cl.Level)
}

func TestClassify_ExplicitLevelOverride(t *testing.T) {
	cfg := Config{
		Patterns: []PatternConfig{
			{Pattern: `legacy`, Level: models.RiskCritical, BusinessImpact: RatingLow, TechnicalComplexity: RatingLow, ChangeFrequency: RatingLow},
		},
	}
	c, err := NewClassifier(cfg)
	require.NoError(t, err)

	cl := c.Classify("legacy export", nil)
	assert.Equal(t, models.RiskCritical, cl.Level, "explicit config level overrides score-derived level")
	assert.Equal(t, 20, cl.Score, "score is still the blend of the inputs")
}

func TestNewClassifier_SkipsBadPatterns(t *testing.T) {
	cfg := Config{
		Patterns: []PatternConfig{
			{Pattern: `[unclosed`, BusinessImpact: RatingHigh, TechnicalComplexity: RatingHigh, ChangeFrequency: RatingHigh},
			{Pattern: `payment`, BusinessImpact: RatingCritical, TechnicalComplexity: RatingHigh, ChangeFrequency: RatingHigh},
		},
	}
	c, err := NewClassifier(cfg)
	require.NoError(t, err, "bad pattern must not abort classifier construction")
	assert.Equal(t, []string{`[unclosed`}, c.Skipped)

	cl := c.Classify("payment form", nil)
	assert.Equal(t, models.RiskCritical, cl.Level, "later valid patterns still apply")
}

func TestNewClassifier_StrictPatterns(t *testing.T) {
	cfg := Config{
		StrictPatterns: true,
		Patterns:       []PatternConfig{{Pattern: `[unclosed`}},
	}
	_, err := NewClassifier(cfg)
	assert.Error(t, err)
}

func TestClassifyFeatures_PreservesOrder(t *testing.T) {
	c, err := NewClassifier(DefaultConfig())
	require.NoError(t, err)

	names := []string{"Checkout", "Help Page", "Login"}
	out := c.ClassifyFeatures(names)
	require.Len(t, out, 3)
	for i, name := range names {
		assert.Equal(t, name, out[i].FeatureName)
	}
}

func TestMatrix(t *testing.T) {
	c, err := NewClassifier(DefaultConfig())
	require.NoError(t, err)

	out := Matrix(c.ClassifyFeatures([]string{"Checkout", "Help Page"}))
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "LOW")
	assert.Contains(t, out, "Checkout")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "risk.yaml")
	content := `defaultLevel: low
patterns:
  - pattern: "payments?"
    businessImpact: critical
    technicalComplexity: high
    changeFrequency: high
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, cfg.DefaultLevel)
	require.Len(t, cfg.Patterns, 1)
	assert.Equal(t, RatingCritical, cfg.Patterns[0].BusinessImpact)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
