package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	flagSettingsDir string
	flagPassphrase  string
	flagJSON        bool
	flagDebug       bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "testgen",
		Short: "Generate test cases from requirements with an LLM",
		Long:  "A command-line interface for turning requirements into structured test cases, pytest skeletons and tracker issues.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagSettingsDir, "settings-dir", "", "Directory holding model settings and credentials (env: TESTGEN_SETTINGS_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagPassphrase, "passphrase", "", "Passphrase used to encrypt stored credentials (env: TESTGEN_PASSPHRASE)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug output")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "testgen %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newScriptCmd())
	rootCmd.AddCommand(newSettingsCmd())
	return rootCmd
}
