package main

import (
	"github.com/spf13/cobra"

	"routemend/internal/discovery"
	"routemend/internal/model"
	"routemend/internal/report"
	"routemend/internal/rewrite"
	"routemend/internal/runner"
	"routemend/internal/verify"
)

// rootArg marks commands whose optional positional argument is the root directory.
const rootArg = "root-arg"

func rootAnnotated() map[string]string {
	return map[string]string{rootArg: "true"}
}

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "migrate [root]",
		Short:       "Rewrite route handlers in place",
		Args:        cobra.MaximumNArgs(1),
		Annotations: rootAnnotated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := model.ModeApply
			if a.dryRun {
				mode = model.ModeDryRun
			}
			_, err := a.execute(cmd, rewrite.New(a.cfg), mode, nil)
			return err
		},
	}
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&a.diff, "diff", false, "Print a unified diff for each changed file")
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "plan [root]",
		Short:       "Show what migrate would change (same as migrate --dry-run)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: rootAnnotated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.execute(cmd, rewrite.New(a.cfg), model.ModeDryRun, nil)
			return err
		},
	}
	cmd.Flags().BoolVar(&a.diff, "diff", false, "Print a unified diff for each changed file")
	return cmd
}

func newPruneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune [root]",
		Short: "Narrow collaborator imports of migrated files to the names they use",
		Long: `prune only touches files that already import the exceptions module. Each
collaborator import is reduced to the names the file references, sorted; an
unused responses import is removed.`,
		Args:        cobra.MaximumNArgs(1),
		Annotations: rootAnnotated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := model.ModeApply
			if a.dryRun {
				mode = model.ModeDryRun
			}
			_, err := a.execute(cmd, rewrite.NewPruner(a.cfg), mode, nil)
			return err
		},
	}
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&a.diff, "diff", false, "Print a unified diff for each changed file")
	return cmd
}

// newRunner wires a runner for stage from the loaded configuration.
func (a *app) newRunner(stage runner.Stage) *runner.Runner {
	var opts []runner.Option
	if a.cfg.Verify {
		opts = append(opts, runner.WithVerifier(verify.New()))
	}
	return runner.New(stage, discovery.New(a.cfg.FileName, a.cfg.ExcludeDirs), a.log, opts...)
}

// execute runs stage and prints the report. Per-file failures are reported,
// not returned, so the exit code stays zero.
func (a *app) execute(cmd *cobra.Command, stage runner.Stage, mode model.Mode, paths []string) (runner.Report, error) {
	rep, err := a.newRunner(stage).Run(cmd.Context(), runnerOptions(a, mode, paths, a.diff))
	if err != nil {
		return rep, err
	}

	if a.jsonOut {
		return rep, report.JSON(a.out, rep)
	}
	p := report.NewPrinter(a.out)
	p.Verbose = a.verbose
	p.ShowDiff = a.diff
	return rep, p.Text(rep)
}

// runnerOptions builds run options from the loaded configuration.
func runnerOptions(a *app, mode model.Mode, paths []string, diff bool) runner.Options {
	return runner.Options{
		Root:  a.cfg.Root,
		Paths: paths,
		Mode:  mode,
		Jobs:  a.cfg.Jobs,
		Diff:  diff,
	}
}
