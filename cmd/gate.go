package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"testwright/internal/gate"
	"testwright/internal/output"
)

var gateComment bool

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Run the PR quality gates",
	Long: `Validate a test run against the fixed quality gates: pass rate and
risk coverage at least 80 (critical), average quality at least 70 and
overall confidence at least 75 (warnings). Exits non-zero when a
critical gate fails, so CI can block the merge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return gateRun(cmd)
	},
}

func init() {
	addRunFlags(gateCmd)
	gateCmd.Flags().BoolVar(&gateComment, "comment", false, "Print the markdown PR comment instead of the table")
	rootCmd.AddCommand(gateCmd)
}

func gateRun(cmd *cobra.Command) error {
	score, err := buildConfidence(cmd)
	if err != nil {
		return err
	}

	result := gate.Validate(score)

	if gateComment {
		fmt.Fprint(ui.Out, gate.RenderComment(result, score))
	} else {
		table := ui.Table([]string{"", "Gate", "Score", "Threshold", "Severity"})
		for _, g := range result.Gates {
			table.Append([]string{
				output.GateMark(g.Passed),
				g.Name,
				fmt.Sprintf("%.1f", g.Score),
				fmt.Sprintf("%.0f", g.Threshold),
				string(g.Severity),
			})
		}
		if err := table.Render(); err != nil {
			return err
		}

		for _, w := range result.Warnings {
			ui.Warning("%s", w)
		}
		for _, b := range result.Blockers {
			ui.Error("%s", b)
		}
	}

	if !result.OverallPassed {
		return fmt.Errorf("quality gates failed: %d blocker(s)", len(result.Blockers))
	}
	ui.Success("All quality gates passed")
	return nil
}
