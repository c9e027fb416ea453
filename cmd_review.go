package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"routemend/internal/model"
	"routemend/internal/report"
	"routemend/internal/rewrite"
	"routemend/internal/tui"
	"routemend/internal/web"
)

// errNoTerminal is returned by review when stdout is not interactive.
var errNoTerminal = errors.New("review needs an interactive terminal; use plan --diff instead")

func newReviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "review [root]",
		Short:       "Pick which planned rewrites to apply in an interactive diff browser",
		Args:        cobra.MaximumNArgs(1),
		Annotations: rootAnnotated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !report.IsTerminal(os.Stdout) {
				return errNoTerminal
			}

			engine := rewrite.New(a.cfg)
			rep, err := a.newRunner(engine).Run(cmd.Context(), runnerOptions(a, model.ModeDryRun, nil, true))
			if err != nil {
				return err
			}
			if len(rep.Changed()) == 0 {
				fmt.Fprintln(a.out, "Nothing to migrate.")
				return nil
			}

			p := tea.NewProgram(tui.NewReview(rep), tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("review UI failed: %w", err)
			}
			m, ok := final.(tui.ReviewModel)
			if !ok || !m.Confirmed {
				fmt.Fprintln(a.out, "No changes applied.")
				return nil
			}

			paths := m.SelectedPaths()
			if len(paths) == 0 {
				fmt.Fprintln(a.out, "No files selected.")
				return nil
			}
			a.log.Info("applying reviewed files", zap.Int("files", len(paths)))
			_, err = a.execute(cmd, engine, model.ModeApply, paths)
			return err
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "serve [root]",
		Short:       "Serve the read-only planning API",
		Args:        cobra.MaximumNArgs(1),
		Annotations: rootAnnotated(),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engine := rewrite.New(a.cfg)
			srv := web.NewServer(a.newRunner(engine), engine, a.cfg.Root, a.cfg.Jobs, a.log)
			return srv.ListenAndServe(ctx, a.addr)
		},
	}
	cmd.Flags().StringVar(&a.addr, "addr", "127.0.0.1:8080", "Listen address")
	return cmd
}
