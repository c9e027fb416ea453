package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"
	"gopkg.in/yaml.v3"

	"routemend/internal/config"
	"routemend/internal/model"
	"routemend/internal/report"
	"routemend/internal/rewrite"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rewrite rules in the order they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := rewrite.New(a.cfg)
			return report.Rules(a.out, engine.Imports(), engine.Rules())
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to " + config.DefaultFile,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !a.force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&a.force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(a.out, "routemend version %s (rules %s)\n", model.Version, rewrite.RulesVersion)
			if a.check {
				checkUpdate(a.out, &latest.GithubTag{Owner: "routemend", Repository: "routemend"}, model.Version)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.check, "check", false, "Check GitHub for a newer release")
	return cmd
}

// checkUpdate reports whether a newer release exists. Lookup failures are
// silent; an offline run is not an error.
func checkUpdate(w io.Writer, src latest.Source, current string) {
	res, err := latest.Check(src, current)
	if err != nil {
		return
	}
	if res.Outdated {
		fmt.Fprintf(w, "A new version is available: %s (you have %s)\n", res.Current, current)
		return
	}
	fmt.Fprintf(w, "You are using the latest version: %s\n", current)
}
