package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"testwright/internal/confidence"
	"testwright/internal/coverage"
	"testwright/internal/models"
	"testwright/internal/output"
	"testwright/internal/quality"
	"testwright/internal/store"
)

var (
	runTotal   int
	runPassed  int
	runFailed  int
	runSkipped int

	confidenceFormat string
)

var confidenceCmd = &cobra.Command{
	Use:   "confidence",
	Short: "Compute the release-confidence score",
	Long: `Blend four signals into a single 0-100 release-confidence score:
test pass rate (from the --total/--passed run stats), risk-weighted
coverage, average draft quality, and the human approval rate. A pass
rate under 80% or risk coverage under 70% blocks the release outright.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return confidenceRun(cmd)
	},
}

func init() {
	addRunFlags(confidenceCmd)
	confidenceCmd.Flags().StringVar(&confidenceFormat, "format", "text", "Output format: text, markdown, json")
	rootCmd.AddCommand(confidenceCmd)
}

// addRunFlags registers the shared test-run stat flags.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&runTotal, "total", 0, "Total tests in the run")
	cmd.Flags().IntVar(&runPassed, "passed", 0, "Tests that passed")
	cmd.Flags().IntVar(&runFailed, "failed", 0, "Tests that failed")
	cmd.Flags().IntVar(&runSkipped, "skipped", 0, "Tests that were skipped")
}

func confidenceRun(cmd *cobra.Command) error {
	score, err := buildConfidence(cmd)
	if err != nil {
		return err
	}

	switch confidenceFormat {
	case "json":
		return writeJSONOut(score)
	case "markdown":
		fmt.Fprint(ui.Out, confidence.RenderReport(score))
		return nil
	case "text":
	default:
		return fmt.Errorf("unknown format: %s (use: text, markdown, json)", confidenceFormat)
	}

	ui.Info("Release confidence: %s/100 (%s)", output.ScoreColor(score.Overall), score.Recommendation)
	fmt.Fprintln(ui.Out)

	table := ui.Table([]string{"Component", "Score", "Weight", "Status"})
	appendComponent(table, "Test pass rate", score.TestPassRate)
	appendComponent(table, "Risk coverage", score.RiskCoverage)
	appendComponent(table, "Test quality", score.TestQuality)
	appendComponent(table, "Human validation", score.HumanValidation)
	if err := table.Render(); err != nil {
		return err
	}

	if score.Details != "" {
		fmt.Fprintln(ui.Out)
		ui.Info("%s", score.Details)
	}
	return nil
}

func appendComponent(table *tablewriter.Table, name string, c confidence.ComponentScore) {
	table.Append([]string{
		name,
		output.ScoreColor(int(c.Score)),
		fmt.Sprintf("%.0f%%", c.Weight*100),
		string(c.Status),
	})
}

// buildConfidence assembles the confidence input from the run flags
// plus store-backed coverage, quality, and review signals.
func buildConfidence(cmd *cobra.Command) (*confidence.Score, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	classifier, err := getClassifier()
	if err != nil {
		return nil, err
	}

	mappings, err := coverage.FromStore(cmd.Context(), s, classifier)
	if err != nil {
		return nil, err
	}

	drafts, err := s.ListDrafts(cmd.Context(), store.DraftListFilter{Status: models.DraftStatusApproved})
	if err != nil {
		return nil, err
	}
	scorer := quality.NewScorer()
	vectors := make([]*quality.Vector, 0, len(drafts))
	for _, d := range drafts {
		vectors = append(vectors, scorer.Score(d.Source))
	}

	decisions, err := s.ListDecisions(cmd.Context())
	if err != nil {
		return nil, err
	}
	var validations confidence.ValidationStats
	for _, d := range decisions {
		if d.Approved {
			validations.Approved++
		} else {
			validations.Rejected++
		}
	}

	return confidence.Calculate(confidence.Input{
		Run: models.TestRunStats{
			Total:   runTotal,
			Passed:  runPassed,
			Failed:  runFailed,
			Skipped: runSkipped,
		},
		Coverage:    coverage.Analyze(mappings),
		Quality:     vectors,
		Validations: validations,
	}), nil
}
