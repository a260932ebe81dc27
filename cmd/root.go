/*
Copyright © 2025 the repolicy authors
*/
package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/repolicyhq/repolicy/pkg/buildinfo"
	"github.com/repolicyhq/repolicy/pkg/exitcode"
	"github.com/repolicyhq/repolicy/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// The factory pattern lets tests build isolated command trees without
// shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repolicy",
		Short: "Check and fix a repository's developer configuration",
		Long: `Repolicy inspects the configuration files of developer tooling
(pre-commit hooks, cspell, taplo, editor integration) and rewrites
them to their canonical form. A run that had to rewrite anything
fails, so the corrections surface in CI and code review.

Examples:
   repolicy check            # check the current repository
   repolicy check path/to/repo
   repolicy check --only cspell,toml
   repolicy check --format markdown`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("repolicy {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// Called from init() for production and explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the command tree. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitcode.GeneralError)
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on the persistent flags.
func initializeLogger(cmd *cobra.Command) {
	levelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	logger.Initialize(logger.Config{
		Level:     logger.ParseLevel(levelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "repolicy",
	})
}
