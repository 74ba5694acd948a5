package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"testwright/internal/coverage"
	"testwright/internal/models"
	"testwright/internal/output"
)

var (
	coverageFormat  string
	coverageHeatmap bool
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Analyze feature test coverage weighted by risk",
	Long: `Analyze which tracked features have approved tests. Coverage is
broken down by risk level and blended into a risk-weighted score where
critical features count four times as much as low-risk ones. Untested
features become prioritized gaps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return coverageRun(cmd)
	},
}

func init() {
	coverageCmd.Flags().StringVar(&coverageFormat, "format", "text", "Output format: text, markdown, json")
	coverageCmd.Flags().BoolVar(&coverageHeatmap, "heatmap", false, "Show the coverage heatmap grid")
	rootCmd.AddCommand(coverageCmd)
}

func coverageRun(cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	classifier, err := getClassifier()
	if err != nil {
		return err
	}

	mappings, err := coverage.FromStore(cmd.Context(), s, classifier)
	if err != nil {
		return err
	}
	if len(mappings) == 0 {
		ui.Info("No features tracked. Use 'testwright discover <file>' to import some.")
		return nil
	}

	metrics := coverage.Analyze(mappings)

	switch coverageFormat {
	case "json":
		return writeJSONOut(metrics)
	case "markdown":
		fmt.Fprint(ui.Out, coverage.RenderReport(metrics))
		return nil
	case "text":
	default:
		return fmt.Errorf("unknown format: %s (use: text, markdown, json)", coverageFormat)
	}

	ui.Info("Overall coverage: %.0f%%  Risk-weighted: %s/100",
		metrics.Overall, output.ScoreColor(metrics.RiskWeighted))
	fmt.Fprintln(ui.Out)

	table := ui.Table([]string{"Risk", "Tested", "Total", "Coverage"})
	for _, level := range models.Levels() {
		lc := metrics.ByLevel[level]
		table.Append([]string{
			output.RiskColor(level),
			strconv.Itoa(lc.Tested),
			strconv.Itoa(lc.Total),
			fmt.Sprintf("%.0f%%", lc.Percentage),
		})
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(metrics.Gaps) > 0 {
		fmt.Fprintln(ui.Out)
		ui.Warning("%d coverage gaps:", len(metrics.Gaps))
		for _, g := range metrics.Gaps {
			fmt.Fprintf(ui.Out, "  [%s] %s: %s\n", g.Priority, output.Cyan(g.FeatureName), g.Recommendation)
		}
	}

	if coverageHeatmap {
		fmt.Fprintln(ui.Out)
		renderHeatmap(coverage.BuildHeatmap(mappings))
	}
	return nil
}

// renderHeatmap prints the grid: green cells have tests, red do not.
func renderHeatmap(h *coverage.Heatmap) {
	for row := 0; row < h.Height; row++ {
		var b strings.Builder
		for col := 0; col < h.Width; col++ {
			i := row*h.Width + col
			if i >= len(h.Cells) {
				break
			}
			cell := h.Cells[i]
			mark := fmt.Sprintf("[%s]", cell.FeatureName)
			if cell.Tested {
				b.WriteString(output.Green(mark))
			} else {
				b.WriteString(output.Red(mark))
			}
			b.WriteString(" ")
		}
		fmt.Fprintln(ui.Out, b.String())
	}
}
