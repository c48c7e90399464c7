package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harmonicanalyze",
		Short: "Automatic harmonic analysis of chord progressions",
	}
	cmd.PersistentFlags().String("patterns", "testdata/patterns.json", "pattern library JSON file")
	cmd.PersistentFlags().String("calibration", "testdata/calibration.json", "calibration artifact JSON file")
	cmd.PersistentFlags().String("settings", "", "optional settings YAML file (profile weights, tunables)")
	cmd.PersistentFlags().String("sentry-dsn", "", "optional Sentry DSN for error reporting")

	cmd.AddCommand(analyzeCmd())
	cmd.AddCommand(patternsCmd())
	cmd.AddCommand(calibrateCheckCmd())
	return cmd
}
