package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"testwright/internal/models"
	"testwright/internal/rejection"
	"testwright/internal/store"
)

var (
	exportFormat string
	exportType   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data as JSON, CSV, or Markdown",
	Long:  "Export features, drafts, or review decisions in various formats.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun(cmd.Context())
	},
}

var rejectionsCmd = &cobra.Command{
	Use:   "rejections",
	Short: "Show rejection patterns and the 30-day trend",
	Long: `Summarize the rejection log: which reasons dominate, reviewer
comments as examples, the daily trend over the last 30 days, and
advice for improving the generation prompts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rejectionsRun()
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, markdown")
	exportCmd.Flags().StringVar(&exportType, "type", "features", "Data type: features, drafts, decisions")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(rejectionsCmd)
}

// writeJSONOut writes indented JSON to the UI writer.
func writeJSONOut(v any) error {
	enc := json.NewEncoder(ui.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exportRun(ctx context.Context) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	switch exportType {
	case "features":
		return exportFeatures(ctx, s)
	case "drafts":
		return exportDrafts(ctx, s)
	case "decisions":
		return exportDecisions(ctx, s)
	default:
		return fmt.Errorf("unknown export type: %s (use: features, drafts, decisions)", exportType)
	}
}

func exportFeatures(ctx context.Context, s store.Store) error {
	features, err := s.ListFeatures(ctx)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		return writeJSONOut(features)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"ID", "Name", "Risk", "Selectors", "Endpoints", "Created"})
		for _, f := range features {
			w.Write([]string{
				f.ID, f.Name, string(f.RiskLevel),
				strconv.Itoa(len(f.Selectors)), strconv.Itoa(len(f.APIEndpoints)),
				f.CreatedAt.Format("2006-01-02"),
			})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Features")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Name | Risk | Description |")
		fmt.Fprintln(ui.Out, "|------|------|-------------|")
		for _, f := range features {
			fmt.Fprintf(ui.Out, "| %s | %s | %s |\n", f.Name, f.RiskLevel, f.Description)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s (use: json, csv, markdown)", exportFormat)
	}
}

func exportDrafts(ctx context.Context, s store.Store) error {
	drafts, err := s.ListDrafts(ctx, store.DraftListFilter{})
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		return writeJSONOut(drafts)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"ID", "Test", "Status", "Score", "Generated"})
		for _, d := range drafts {
			w.Write([]string{
				d.ID, d.TestName, string(d.Status),
				strconv.Itoa(d.OverallScore),
				d.GeneratedAt.Format("2006-01-02"),
			})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Test Drafts")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Test | Status | Score |")
		fmt.Fprintln(ui.Out, "|------|--------|-------|")
		for _, d := range drafts {
			fmt.Fprintf(ui.Out, "| %s | %s | %d |\n", d.TestName, d.Status, d.OverallScore)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s (use: json, csv, markdown)", exportFormat)
	}
}

func exportDecisions(ctx context.Context, s store.Store) error {
	decisions, err := s.ListDecisions(ctx)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		return writeJSONOut(decisions)
	case "csv":
		w := csv.NewWriter(ui.Out)
		w.Write([]string{"ID", "Test", "Approved", "Reason", "Reviewer", "Reviewed"})
		for _, d := range decisions {
			w.Write([]string{
				d.ID, d.TestName, strconv.FormatBool(d.Approved),
				string(d.RejectionReason), d.ReviewedBy,
				d.ReviewedAt.Format("2006-01-02"),
			})
		}
		w.Flush()
		return w.Error()
	case "markdown":
		fmt.Fprintln(ui.Out, "# Review Decisions")
		fmt.Fprintln(ui.Out)
		fmt.Fprintln(ui.Out, "| Test | Approved | Reason | Reviewer |")
		fmt.Fprintln(ui.Out, "|------|----------|--------|----------|")
		for _, d := range decisions {
			fmt.Fprintf(ui.Out, "| %s | %t | %s | %s |\n", d.TestName, d.Approved, d.RejectionReason, d.ReviewedBy)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s (use: json, csv, markdown)", exportFormat)
	}
}

func rejectionsRun() error {
	rejected, err := rejectionLog().ReadAll()
	if err != nil {
		return err
	}
	if len(rejected) == 0 {
		ui.Info("No rejections recorded yet.")
		return nil
	}
	approved, err := approvedLog().ReadAll()
	if err != nil {
		return err
	}

	history := make([]models.Decision, 0, len(rejected)+len(approved))
	history = append(history, rejected...)
	history = append(history, approved...)

	stats := rejection.CalculateStats(nil, history)
	fmt.Fprint(ui.Out, rejection.RenderReport(stats))
	return nil
}
