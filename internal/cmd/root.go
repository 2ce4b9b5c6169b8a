// Package cmd contains all CLI commands for the lateness tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is the current version of the lateness tool
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lateness",
	Short: "Canvas assignment lateness report generator",
	Long: `lateness fetches student submission data from the Canvas API for one
course, computes how early or late each submission was relative to its
assignment's due date, and writes a two-sheet spreadsheet plus a JSON
snapshot. Late submissions are called out in red, on-time submissions
in blue.

Raw API collections are cached in .lateness/cache.db so repeat runs
against the same course can skip the network with --use_cache.

Configuration lives in .lateness/config.yaml (see 'lateness init').
The Canvas OAuth token is read from the OAUTH_TOKEN environment
variable, or from a .env file in the working directory.

Examples:
  lateness init                          # Write default config
  lateness report 39                     # Generate report for course 39
  lateness report 39 --use_cache         # Reuse cached API data
  lateness report 39 --student_name name # Label rows by name, not HUID
  lateness cache stats                   # Inspect the cache
  lateness cache clear --course 39       # Drop cached data for course 39`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .lateness/config.yaml)")
}
