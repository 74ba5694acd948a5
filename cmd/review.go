package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testwright/internal/models"
	"testwright/internal/output"
	"testwright/internal/quality"
	"testwright/internal/rejection"
	"testwright/internal/review"
)

var reviewShowSource bool

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review pending test drafts",
	Long: `Walk the queue of pending drafts one at a time. Each draft is shown
with its quality score and issue list; approve it, reject it with a
reason, or skip it. Decisions are recorded for the rejection tracker,
which summarizes your session patterns at the end.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reviewRun(cmd)
	},
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewShowSource, "source", false, "Print full draft source for each test")
	rootCmd.AddCommand(reviewCmd)
}

func reviewerName() string {
	if name := viper.GetString("reviewer"); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

func reviewRun(cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	session := review.NewSession(s, rejectionLog(), approvedLog(), reviewerName())

	pending, err := session.Pending(cmd.Context())
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		ui.Info("No drafts pending review.")
		return nil
	}

	ui.Info("%d drafts pending review", len(pending))
	reader := bufio.NewReader(os.Stdin)

	for i, d := range pending {
		fmt.Fprintln(ui.Out)
		ui.Info("[%d/%d] %s", i+1, len(pending), output.Cyan(d.TestName))
		if d.Description != "" {
			fmt.Fprintf(ui.Out, "  %s\n", d.Description)
		}

		v := session.Evaluate(d)
		fmt.Fprintf(ui.Out, "  Quality: %s/100\n", output.ScoreColor(v.Overall))
		for _, issue := range v.Issues {
			switch issue.Severity {
			case quality.SeverityError:
				ui.Error("  [%s] %s", issue.Category, issue.Message)
			case quality.SeverityWarning:
				ui.Warning("  [%s] %s", issue.Category, issue.Message)
			default:
				ui.VerboseLog("  [%s] %s", issue.Category, issue.Message)
			}
		}
		if reviewShowSource {
			fmt.Fprintln(ui.Out)
			fmt.Fprintln(ui.Out, d.Source)
		}

		action, err := promptLine(reader, "  [a]pprove, [r]eject, [s]kip, [q]uit: ")
		if err != nil {
			return err
		}

		switch strings.ToLower(action) {
		case "a", "approve":
			comments, err := promptLine(reader, "  Comments (optional): ")
			if err != nil {
				return err
			}
			if _, err := session.Approve(cmd.Context(), d, comments); err != nil {
				return err
			}
			ui.Success("Approved %s", d.TestName)
		case "r", "reject":
			reason, err := promptReason(reader)
			if err != nil {
				return err
			}
			comments, err := promptLine(reader, "  Comments (optional): ")
			if err != nil {
				return err
			}
			if _, err := session.Reject(cmd.Context(), d, reason, comments); err != nil {
				return err
			}
			ui.Success("Rejected %s (%s)", d.TestName, reason)
		case "q", "quit":
			return sessionSummary(session)
		default:
			ui.Info("Skipped %s", d.TestName)
		}
	}

	return sessionSummary(session)
}

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(ui.Out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptReason asks for one of the closed rejection reasons by number.
func promptReason(reader *bufio.Reader) (models.RejectionReason, error) {
	reasons := models.RejectionReasons()
	for i, r := range reasons {
		fmt.Fprintf(ui.Out, "    %2d. %s\n", i+1, r)
	}
	for {
		answer, err := promptLine(reader, "  Reason #: ")
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(reasons) {
			return reasons[n-1], nil
		}
		// Accept typing the reason directly too
		if models.ValidRejectionReason(models.RejectionReason(answer)) {
			return models.RejectionReason(answer), nil
		}
		ui.Warning("Enter a number 1-%d", len(reasons))
	}
}

// sessionSummary prints session counts and rejection patterns.
func sessionSummary(session *review.Session) error {
	approved, rejected := session.Summary()
	if approved+rejected == 0 {
		ui.Info("No decisions made this session.")
		return nil
	}

	fmt.Fprintln(ui.Out)
	ui.Success("Session complete: %d approved, %d rejected", approved, rejected)

	stats := rejection.CalculateStats(session.Decisions(), session.History())
	if stats.TotalRejections == 0 {
		return nil
	}

	fmt.Fprintln(ui.Out)
	ui.Info("Top rejection patterns:")
	for i, p := range stats.CommonPatterns {
		if i >= 3 || p.Count == 0 {
			break
		}
		fmt.Fprintf(ui.Out, "  %s: %d (%.0f%%)\n", p.Reason, p.Count, p.Percentage)
	}

	for _, insight := range rejection.ImprovementInsights(append(session.History(), session.Decisions()...)) {
		ui.Info("Tip (%s): %s", insight.Reason, insight.Advice)
	}
	return nil
}
