package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"routemend/internal/config"
	"routemend/internal/logging"
)

// app carries state shared by every command. Fields are filled by flags and
// by the root command's PersistentPreRunE.
type app struct {
	// Persistent flags
	cfgPath  string
	verbose  bool
	jobs     int
	verify   bool
	extended bool
	jsonOut  bool

	// Per-command flags
	dryRun bool
	diff   bool
	addr   string
	check  bool
	force  bool

	cfg *config.Config
	log *zap.Logger
	out io.Writer
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "routemend",
		Short: "Migrate Next.js route handlers to shared error and response helpers",
		Long: `routemend rewrites route.ts handlers that build NextResponse.json error and
success payloads inline so they throw typed exceptions and call the shared
response builders instead. Files already importing the exceptions module are
never touched, so runs are safe to repeat.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, args)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	addPersistentFlags(root.PersistentFlags(), a)

	root.AddCommand(
		newMigrateCmd(a),
		newPlanCmd(a),
		newPruneCmd(a),
		newReviewCmd(a),
		newServeCmd(a),
		newRulesCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return root
}

func addPersistentFlags(fs *pflag.FlagSet, a *app) {
	fs.StringVarP(&a.cfgPath, "config", "c", "", "Config file (default "+config.DefaultFile+" if present)")
	fs.BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging; list unchanged files and fired rules")
	fs.IntVarP(&a.jobs, "jobs", "j", 1, "Files processed concurrently")
	fs.BoolVar(&a.verify, "verify", false, "Re-parse rewritten files and refuse rewrites that break syntax")
	fs.BoolVar(&a.extended, "extended-rules", false, "Also map 429 and 502 responses to exceptions")
	fs.BoolVar(&a.jsonOut, "json", false, "Print the run report as JSON")
}

// setup loads configuration, overlays changed flags and the optional root
// argument, validates, and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.out = cmd.OutOrStdout()

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("jobs") {
		cfg.Jobs = a.jobs
	}
	if flags.Changed("verify") {
		cfg.Verify = a.verify
	}
	if flags.Changed("extended-rules") {
		cfg.Rules.ExtendedStatus = a.extended
	}
	if len(args) == 1 && cmd.Annotations[rootArg] == "true" {
		cfg.Root = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log
	a.log.Debug("configuration loaded",
		zap.String("root", cfg.Root),
		zap.Int("jobs", cfg.Jobs),
		zap.Bool("verify", cfg.Verify),
		zap.Bool("extended_status", cfg.Rules.ExtendedStatus))
	return nil
}
