package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stagehand-hq/stagehand/pkg/cli"
	"stagehand-hq/stagehand/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without starting the server.

Reports every invalid field at once rather than stopping at the first
problem.

Examples:
  stagehand validate --config stagehand.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Println("Configuration invalid:")
			for _, fe := range verr.Errors {
				fmt.Printf("  %s: %s\n", fe.Field, fe.Message)
			}
		}
		return cli.NewConfigError("", err.Error())
	}

	fmt.Println("Configuration valid")
	fmt.Printf("  listen:     %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  root:       %s\n", cfg.Content.Root)
	if cfg.Proxy.Origin != "" {
		fmt.Printf("  origin:     %s\n", cfg.Proxy.Origin)
	} else {
		fmt.Printf("  origin:     (derived from git checkout at startup)\n")
	}
	fmt.Printf("  livereload: %v\n", cfg.LiveReload.Enabled)
	fmt.Printf("  accesslog:  %v\n", cfg.AccessLog.Enabled)
	return nil
}
