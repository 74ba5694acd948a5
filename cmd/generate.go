package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"testwright/internal/llm"
	"testwright/internal/models"
	"testwright/internal/output"
	"testwright/internal/quality"
	"testwright/internal/store"
)

var generateMinScore int

var generateCmd = &cobra.Command{
	Use:   "generate [feature]",
	Short: "Draft E2E tests for features using an LLM",
	Long: `Draft an E2E test for each tracked feature (or one named feature)
using the Anthropic API, then immediately score the draft. Drafts are
stored as pending for human review.

Requires ANTHROPIC_API_KEY environment variable or anthropic.api_key in config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return generateRun(cmd.Context(), name)
	},
}

func init() {
	generateCmd.Flags().IntVar(&generateMinScore, "min-score", 0, "Warn when a draft scores below this threshold")
	rootCmd.AddCommand(generateCmd)
}

func generateRun(ctx context.Context, featureName string) error {
	provider := newLLMProvider()
	if provider == nil {
		return fmt.Errorf("no Anthropic API key configured (set ANTHROPIC_API_KEY or anthropic.api_key)")
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	features, err := targetFeatures(ctx, s, featureName)
	if err != nil {
		return err
	}
	if len(features) == 0 {
		ui.Info("No features tracked. Use 'testwright discover <file>' to import some.")
		return nil
	}

	scorer := quality.NewScorer()
	generated := 0

	for _, f := range features {
		if dryRun {
			ui.DryRunMsg("Would generate test for feature: %s", f.Name)
			continue
		}

		ui.VerboseLog("Generating test for %s", f.Name)
		draft, err := provider.GenerateTest(ctx, draftRequest(f))
		if err != nil {
			ui.Error("Generation failed for %s: %v", f.Name, err)
			continue
		}

		v := scorer.Score(draft.Source)

		d := &models.TestDraft{
			FeatureID:    f.ID,
			TestName:     draft.TestName,
			Description:  draft.Description,
			Source:       draft.Source,
			OverallScore: v.Overall,
		}
		if err := s.CreateDraft(ctx, d); err != nil {
			return fmt.Errorf("store draft for %s: %w", f.Name, err)
		}
		generated++

		ui.Success("%s -> %s (score %s)", f.Name, draft.TestName, output.ScoreColor(v.Overall))
		if generateMinScore > 0 && v.Overall < generateMinScore {
			ui.Warning("Draft %s scored %d, below --min-score %d", draft.TestName, v.Overall, generateMinScore)
			for _, issue := range v.Issues {
				if issue.Severity == quality.SeverityError {
					ui.Warning("  %s: %s", issue.Category, issue.Message)
				}
			}
		}
	}

	ui.Info("Generated %d drafts pending review. Run 'testwright review' next.", generated)
	return nil
}

// draftRequest builds the generation prompt input from a tracked feature.
func draftRequest(f *models.Feature) llm.GenerateRequest {
	return llm.GenerateRequest{
		FeatureName:  f.Name,
		Description:  f.Description,
		Selectors:    f.Selectors,
		APIEndpoints: f.APIEndpoints,
		RiskLevel:    f.RiskLevel,
	}
}

// targetFeatures resolves the generate target: one named feature or all.
func targetFeatures(ctx context.Context, s store.Store, name string) ([]*models.Feature, error) {
	if name == "" {
		return s.ListFeatures(ctx)
	}
	f, err := s.GetFeatureByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return []*models.Feature{f}, nil
}
