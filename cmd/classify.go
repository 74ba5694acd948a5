package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"testwright/internal/output"
	"testwright/internal/risk"
)

var classifyFormat string

var classifyCmd = &cobra.Command{
	Use:   "classify [feature...]",
	Short: "Classify feature risk levels",
	Long: `Classify features as critical/high/medium/low risk by pattern
matching their names against the risk config. Without arguments, all
tracked features are classified; stored risk levels act as overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return classifyRun(cmd, args)
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyFormat, "format", "text", "Output format: text, matrix, json")
	rootCmd.AddCommand(classifyCmd)
}

func classifyRun(cmd *cobra.Command, names []string) error {
	classifier, err := getClassifier()
	if err != nil {
		return err
	}

	var classifications []risk.Classification

	if len(names) > 0 {
		classifications = classifier.ClassifyFeatures(names)
	} else {
		s, err := getStore()
		if err != nil {
			return err
		}
		features, err := s.ListFeatures(cmd.Context())
		if err != nil {
			return err
		}
		if len(features) == 0 {
			ui.Info("No features tracked. Pass feature names or run 'testwright discover' first.")
			return nil
		}
		for _, f := range features {
			var rctx *risk.Context
			if f.RiskLevel != "" {
				rctx = &risk.Context{Level: f.RiskLevel}
			}
			classifications = append(classifications, classifier.Classify(f.Name, rctx))
		}
	}

	switch classifyFormat {
	case "json":
		return writeJSONOut(classifications)
	case "matrix":
		fmt.Fprint(ui.Out, risk.Matrix(classifications))
		return nil
	case "text":
	default:
		return fmt.Errorf("unknown format: %s (use: text, matrix, json)", classifyFormat)
	}

	table := ui.Table([]string{"Feature", "Risk", "Score", "Impact", "Complexity", "Frequency"})
	for _, cl := range classifications {
		table.Append([]string{
			output.Cyan(cl.FeatureName),
			output.RiskColor(cl.Level),
			strconv.Itoa(cl.Score),
			string(cl.BusinessImpact),
			string(cl.TechnicalComplexity),
			string(cl.ChangeFrequency),
		})
	}
	return table.Render()
}
