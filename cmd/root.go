package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"testwright/internal/output"
	"testwright/internal/risk"
	"testwright/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "testwright",
	Short: "Testwright - score, prioritize, and gate AI-generated E2E tests",
	Long: `testwright turns discovered app features into reviewed E2E tests.
It drafts tests with an LLM, scores them statically across five quality
dimensions, classifies feature risk, analyzes coverage gaps, and blends
everything into a release-confidence score with PR quality gates.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/testwright/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "testwright")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TESTWRIGHT")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "testwright")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "testwright.db"))
	viper.SetDefault("risk_config", "")
	viper.SetDefault("reviewer", "")
	viper.SetDefault("anthropic.api_key", "")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("logs.rejections", filepath.Join(defaultConfigDir, "rejection-log.json"))
	viper.SetDefault("logs.approved", filepath.Join(defaultConfigDir, "approved-tests.json"))

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// The store is initialized lazily so config/version commands can
	// run without a db.
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// getClassifier builds the risk classifier from risk_config when set,
// falling back to the built-in pattern table.
func getClassifier() (*risk.Classifier, error) {
	cfg := risk.DefaultConfig()
	if path := viper.GetString("risk_config"); path != "" {
		loaded, err := risk.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("load risk config: %w", err)
		}
		cfg = loaded
	}

	c, err := risk.NewClassifier(cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range c.Skipped {
		ui.Warning("Skipping invalid risk pattern: %s", p)
	}
	return c, nil
}

// rejectionLog returns the rejection record log from config.
func rejectionLog() *store.DecisionLog {
	return store.NewDecisionLog(viper.GetString("logs.rejections"))
}

// approvedLog returns the approved-test record log from config.
func approvedLog() *store.DecisionLog {
	return store.NewDecisionLog(viper.GetString("logs.approved"))
}
