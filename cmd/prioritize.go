package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"testwright/internal/coverage"
	"testwright/internal/models"
	"testwright/internal/output"
	"testwright/internal/prioritize"
	"testwright/internal/store"
)

var (
	prioritizeStrategy string
	prioritizeContext  string
	prioritizeResults  string
	prioritizeFormat   string
)

var prioritizeCmd = &cobra.Command{
	Use:   "prioritize",
	Short: "Order approved tests for execution",
	Long: `Compute an execution order for approved tests using one of four
strategies: by-risk, by-recency, by-failure-rate, or smart (a weighted
blend of all signals plus execution time).

Runtime signals (failure rates, execution times) come from a results
JSON file passed with --results; without it only stored data is used.
Use --ci-context pr|merge to trim the list to what that context runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return prioritizeRun(cmd)
	},
}

func init() {
	prioritizeCmd.Flags().StringVar(&prioritizeStrategy, "strategy", string(prioritize.Smart), "Strategy: by-risk, by-recency, by-failure-rate, smart")
	prioritizeCmd.Flags().StringVar(&prioritizeContext, "ci-context", "", "CI context filter: pr, merge (default: run everything)")
	prioritizeCmd.Flags().StringVar(&prioritizeResults, "results", "", "Results JSON file with failure rates and execution times")
	prioritizeCmd.Flags().StringVar(&prioritizeFormat, "format", "text", "Output format: text, json")
	rootCmd.AddCommand(prioritizeCmd)
}

// resultRecord is one entry of the --results file.
type resultRecord struct {
	TestName        string     `json:"testName"`
	FailureRate     float64    `json:"failureRate"`
	ExecutionTimeMs int64      `json:"executionTimeMs"`
	LastModified    *time.Time `json:"lastModified,omitempty"`
}

func prioritizeRun(cmd *cobra.Command) error {
	strategy := prioritize.Strategy(prioritizeStrategy)
	valid := false
	for _, s := range prioritize.Strategies() {
		if s == strategy {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown strategy: %s", prioritizeStrategy)
	}

	tests, err := storedTests(cmd)
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		ui.Info("No approved tests to prioritize. Run 'testwright review' first.")
		return nil
	}

	if prioritizeResults != "" {
		if err := mergeResults(tests, prioritizeResults); err != nil {
			return err
		}
	}

	if prioritizeContext != "" {
		tests = prioritize.FilterForContext(tests, prioritizeContext)
	}

	plan := prioritize.Plan(tests, strategy)

	if prioritizeFormat == "json" {
		return writeJSONOut(plan)
	}

	ui.Info("Execution plan (%s, %d tests)", strategy, len(plan))
	fmt.Fprintln(ui.Out)

	table := ui.Table([]string{"#", "Test", "Feature", "Risk", "Priority"})
	for _, tp := range plan {
		table.Append([]string{
			strconv.Itoa(tp.ExecutionOrder),
			output.Cyan(tp.Name),
			tp.FeatureName,
			output.RiskColor(tp.RiskLevel),
			fmt.Sprintf("%.1f", tp.Priority),
		})
	}
	return table.Render()
}

// storedTests builds the test list from approved drafts: risk comes
// from the feature classification, recency from the review timestamp.
func storedTests(cmd *cobra.Command) ([]prioritize.TestInfo, error) {
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
	levelByFeature := make(map[string]models.RiskLevel, len(mappings))
	for _, m := range mappings {
		levelByFeature[m.FeatureName] = m.Classification.Level
	}

	features, err := s.ListFeatures(cmd.Context())
	if err != nil {
		return nil, err
	}
	nameByID := make(map[string]string, len(features))
	for _, f := range features {
		nameByID[f.ID] = f.Name
	}

	drafts, err := s.ListDrafts(cmd.Context(), store.DraftListFilter{Status: models.DraftStatusApproved})
	if err != nil {
		return nil, err
	}

	tests := make([]prioritize.TestInfo, 0, len(drafts))
	for _, d := range drafts {
		featureName := nameByID[d.FeatureID]
		ti := prioritize.TestInfo{
			Name:        d.TestName,
			FeatureName: featureName,
			RiskLevel:   levelByFeature[featureName],
		}
		if d.ReviewedAt != nil {
			ti.LastModified = d.ReviewedAt
		}
		tests = append(tests, ti)
	}
	return tests, nil
}

// mergeResults overlays runtime signals from a results file onto the
// stored tests, matched by test name.
func mergeResults(tests []prioritize.TestInfo, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read results file: %w", err)
	}
	var records []resultRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse results file: %w", err)
	}

	byName := make(map[string]resultRecord, len(records))
	for _, r := range records {
		byName[r.TestName] = r
	}
	for i := range tests {
		r, ok := byName[tests[i].Name]
		if !ok {
			continue
		}
		tests[i].FailureRate = r.FailureRate
		tests[i].ExecutionTime = time.Duration(r.ExecutionTimeMs) * time.Millisecond
		if r.LastModified != nil {
			tests[i].LastModified = r.LastModified
		}
	}
	return nil
}
