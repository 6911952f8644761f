package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Stagehand - local-first development proxy for static sites",
	Long: `Stagehand serves a static site from a local directory and fills the
gaps from a remote preview origin.

Every request resolves the same way:
  1. Serve the file from the local content root if it exists.
  2. Otherwise fetch it from the upstream origin and relay it.
  3. Otherwise answer 404 with a page naming both attempts.

The upstream origin can be configured explicitly or derived from the git
checkout containing the content root.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when omitted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
