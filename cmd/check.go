/*
Copyright © 2025 the repolicy authors
*/
package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/repolicyhq/repolicy/internal/checkers"
	"github.com/repolicyhq/repolicy/internal/gitctx"
	"github.com/repolicyhq/repolicy/internal/policy"
	"github.com/repolicyhq/repolicy/pkg/config"
	"github.com/repolicyhq/repolicy/pkg/exitcode"
	"github.com/repolicyhq/repolicy/pkg/logger"
	"github.com/repolicyhq/repolicy/pkg/safeio"
)

// exitError carries a specific process exit code through cobra's error path.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return exitcode.String(e.code)
}

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Check the repository's developer configuration and fix what it can",
		Long: `Check runs every applicable checker against the repository. Fixable
mismatches are corrected in place; everything found is reported and the
command exits non-zero so the corrections get reviewed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().StringSlice("only", nil, "Run only the named checkers")
	cmd.Flags().StringSlice("skip", nil, "Skip the named checkers")
	cmd.Flags().String("format", "", "Report format (concise|markdown|json)")
	cmd.Flags().Bool("list", false, "List the available checkers and exit")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine := policy.NewEngine(checkers.All()...)

	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, checker := range engine.Checkers() {
			fmt.Fprintln(cmd.OutOrStdout(), checker.Name())
		}
		return nil
	}

	root, err := resolveTarget(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}
	if only, _ := cmd.Flags().GetStringSlice("only"); len(only) > 0 {
		cfg.Checkers.Only = only
	}
	if skip, _ := cmd.Flags().GetStringSlice("skip"); len(skip) > 0 {
		cfg.Checkers.Skip = skip
	}

	format := cfg.Report.Format
	if flagFormat, _ := cmd.Flags().GetString("format"); flagFormat != "" {
		format = flagFormat
	}
	outputFormat, err := policy.ParseFormat(format)
	if err != nil {
		return err
	}

	logger.Debug("checking repository", logger.String("target", root))
	project := policy.NewProject(root, cfg)
	report := engine.Run(project)

	output, err := policy.NewFormatter(outputFormat).Format(report)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output)

	if !report.Clean() {
		return &exitError{code: exitcode.PolicyViolation}
	}
	return nil
}

// resolveTarget turns the optional positional argument into the directory to
// check. Inside a git work tree the repository root wins, so the command can
// be run from any subdirectory.
func resolveTarget(args []string) (string, error) {
	target := "."
	if len(args) > 0 {
		cleaned, err := safeio.CleanUserPath(args[0])
		if err != nil {
			return "", fmt.Errorf("invalid target %s: %w", args[0], err)
		}
		target = cleaned
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", target, err)
	}
	if ctx := gitctx.Discover(abs); ctx != nil {
		return ctx.Root, nil
	}
	return abs, nil
}
