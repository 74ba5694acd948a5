package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"testwright/internal/discovery"
	"testwright/internal/output"
)

var discoverUpdate bool

var discoverCmd = &cobra.Command{
	Use:   "discover <file>",
	Short: "Import discovered features from a crawl record",
	Long: `Import app features from a discovery JSON file produced by a site
crawl. Each record carries the feature name, selectors, API endpoints,
and an optional risk level. Malformed records are skipped with a
warning; unknown risk levels are cleared and classified by pattern
instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return discoverRun(cmd.Context(), args[0])
	},
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverUpdate, "update", false, "Update features that already exist (default: skip)")
	rootCmd.AddCommand(discoverCmd)
}

func discoverRun(ctx context.Context, file string) error {
	records, skipped, err := discovery.LoadRecords(file)
	if err != nil {
		return err
	}
	for _, msg := range skipped {
		ui.Warning("%s", msg)
	}

	if len(records) == 0 {
		ui.Info("No usable feature records in %s", file)
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	created, updated, unchanged := 0, 0, 0
	for _, r := range records {
		f := r.Feature()

		existing, err := s.GetFeatureByName(ctx, f.Name)
		if err == nil {
			if !discoverUpdate {
				unchanged++
				ui.VerboseLog("Skipping existing feature: %s", f.Name)
				continue
			}
			existing.Description = f.Description
			existing.Selectors = f.Selectors
			existing.APIEndpoints = f.APIEndpoints
			if f.RiskLevel != "" {
				existing.RiskLevel = f.RiskLevel
			}
			if dryRun {
				ui.DryRunMsg("Would update feature: %s", f.Name)
				continue
			}
			if err := s.UpdateFeature(ctx, existing); err != nil {
				return fmt.Errorf("update feature %s: %w", f.Name, err)
			}
			updated++
			continue
		}

		if dryRun {
			ui.DryRunMsg("Would create feature: %s", f.Name)
			continue
		}
		if err := s.CreateFeature(ctx, f); err != nil {
			return fmt.Errorf("create feature %s: %w", f.Name, err)
		}
		created++
		ui.VerboseLog("Created feature: %s (%s)", f.Name, output.RiskColor(f.RiskLevel))
	}

	ui.Success("Imported %d features (%d created, %d updated, %d skipped)",
		len(records), created, updated, unchanged)
	return nil
}
