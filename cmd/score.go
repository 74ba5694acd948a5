package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"testwright/internal/output"
	"testwright/internal/quality"
)

var (
	scoreDraftID string
	scoreFormat  string
)

var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Statically score an E2E test across five quality dimensions",
	Long: `Score test source on syntax validity, coverage completeness,
assertion quality, maintainability, and best practices. The overall
score is a weighted blend; the issue list explains every deduction.

Score a file directly, or a stored draft with --draft.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if scoreDraftID != "" {
			return scoreDraftRun(cmd, scoreDraftID)
		}
		if len(args) != 1 {
			return fmt.Errorf("provide a test file or --draft <id>")
		}
		return scoreFileRun(args[0])
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreDraftID, "draft", "", "Score a stored draft by ID instead of a file")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "text", "Output format: text, markdown, json")
	rootCmd.AddCommand(scoreCmd)
}

func scoreFileRun(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read test file: %w", err)
	}
	return renderScore(path, quality.NewScorer().Score(string(data)))
}

func scoreDraftRun(cmd *cobra.Command, id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	d, err := s.GetDraft(cmd.Context(), id)
	if err != nil {
		return err
	}
	return renderScore(d.TestName, quality.NewScorer().Score(d.Source))
}

func renderScore(name string, v *quality.Vector) error {
	switch scoreFormat {
	case "markdown":
		fmt.Fprint(ui.Out, quality.RenderReport(name, v))
		return nil
	case "json":
		return writeJSONOut(v)
	case "text":
		// fallthrough to the table below
	default:
		return fmt.Errorf("unknown format: %s (use: text, markdown, json)", scoreFormat)
	}

	ui.Info("%s scored %s/100", name, output.ScoreColor(v.Overall))
	fmt.Fprintln(ui.Out)

	table := ui.Table([]string{"Dimension", "Score"})
	table.Append([]string{"Syntax", output.ScoreColor(v.Syntax)})
	table.Append([]string{"Coverage", output.ScoreColor(v.Coverage)})
	table.Append([]string{"Assertions", output.ScoreColor(v.Assertions)})
	table.Append([]string{"Maintainability", output.ScoreColor(v.Maintainability)})
	table.Append([]string{"Best practices", output.ScoreColor(v.BestPractices)})
	if err := table.Render(); err != nil {
		return err
	}

	if len(v.Issues) > 0 {
		fmt.Fprintln(ui.Out)
		for _, issue := range v.Issues {
			switch issue.Severity {
			case quality.SeverityError:
				ui.Error("[%s] %s", issue.Category, issue.Message)
			case quality.SeverityWarning:
				ui.Warning("[%s] %s", issue.Category, issue.Message)
			default:
				ui.Info("[%s] %s", issue.Category, issue.Message)
			}
		}
	}
	return nil
}
