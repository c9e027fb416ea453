// Package runner drives discovery, classification, transformation and
// persistence over a set of route handler files.
package runner

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"routemend/internal/diffview"
	"routemend/internal/discovery"
	"routemend/internal/fsutil"
	"routemend/internal/model"
	"routemend/internal/rewrite"
)

// Stage is one content transformation with its own gate.
type Stage interface {
	Name() string
	Classify(content string) model.Classification
	Eligible(c model.Classification) bool
	Transform(content string) rewrite.Result
}

// FS is the file access the runner needs.
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// Verifier rejects rewrites that introduce syntax errors.
type Verifier interface {
	Regression(ctx context.Context, before, after string) error
}

// OSFS reads from disk and writes atomically.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) WriteFile(path string, data []byte) error { return fsutil.WriteAtomic(path, data) }

// Options controls a single run.
type Options struct {
	Root  string
	Paths []string // Explicit files; discovery is skipped when set
	Mode  model.Mode
	Jobs  int  // Files processed concurrently; < 1 means 1
	Diff  bool // Attach unified diffs to changed results
}

// Runner executes a stage over files.
type Runner struct {
	stage    Stage
	finder   *discovery.Finder
	fs       FS
	verifier Verifier
	log      *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithFS replaces the default OSFS.
func WithFS(fs FS) Option {
	return func(r *Runner) { r.fs = fs }
}

// WithVerifier enables post-rewrite verification.
func WithVerifier(v Verifier) Option {
	return func(r *Runner) { r.verifier = v }
}

// New creates a Runner.
func New(stage Stage, finder *discovery.Finder, log *zap.Logger, opts ...Option) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{stage: stage, finder: finder, fs: OSFS{}, log: log}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run processes every file and returns the report. Per-file failures are
// recorded in the report; an error is returned only when the root cannot be
// walked or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Mode == "" {
		opts.Mode = model.ModeApply
	}
	rep := Report{
		RunID:        uuid.NewString(),
		Stage:        r.stage.Name(),
		Mode:         opts.Mode,
		RulesVersion: rewrite.RulesVersion,
		Root:         opts.Root,
		Started:      time.Now(),
	}
	log := r.log.With(zap.String("run_id", rep.RunID), zap.String("stage", rep.Stage))

	paths := opts.Paths
	if len(paths) == 0 {
		found, err := r.finder.Find(opts.Root)
		if err != nil {
			return rep, err
		}
		paths = found
	}
	log.Info("run started", zap.String("mode", string(opts.Mode)), zap.Int("files", len(paths)))

	results := make([]model.RunResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Jobs))
	for i, p := range paths {
		g.Go(func() error {
			results[i] = r.process(gctx, log, opts, p)
			return nil
		})
	}
	_ = g.Wait()

	rep.Results = results
	for _, res := range results {
		rep.Summary.Add(res)
	}
	rep.Duration = time.Since(rep.Started)

	log.Info("run finished",
		zap.Int("ok", rep.Summary.OK),
		zap.Int("skipped", rep.Summary.Skipped),
		zap.Int("failed", rep.Summary.Failed),
		zap.Int("changed", rep.Summary.Changed),
		zap.Duration("took", rep.Duration))
	return rep, ctx.Err()
}

func (r *Runner) process(ctx context.Context, log *zap.Logger, opts Options, path string) model.RunResult {
	res := model.RunResult{Path: path}
	log = log.With(zap.String("path", path))

	fail := func(err error) model.RunResult {
		res.Status = model.StatusFailed
		res.Diagnostic = err.Error()
		log.Warn("file failed", zap.Error(err))
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	content := string(data)

	res.Classification = r.stage.Classify(content)
	if !r.stage.Eligible(res.Classification) {
		res.Status = model.StatusSkipped
		res.Diagnostic = string(res.Classification)
		log.Debug("file skipped", zap.String("class", string(res.Classification)))
		return res
	}

	out := r.stage.Transform(content)
	res.Changed = out.Changed
	res.Rules = out.Applied
	if !out.Changed {
		res.Status = model.StatusOK
		log.Debug("file unchanged")
		return res
	}

	if r.verifier != nil {
		if err := r.verifier.Regression(ctx, content, out.Content); err != nil {
			return fail(err)
		}
	}
	if opts.Diff {
		d, err := diffview.Unified(filepath.ToSlash(path), content, out.Content)
		if err != nil {
			log.Debug("diff failed", zap.Error(err))
		}
		res.Diff = d
	}

	if opts.Mode != model.ModeDryRun {
		if err := r.fs.WriteFile(path, []byte(out.Content)); err != nil {
			return fail(err)
		}
	}

	res.Status = model.StatusOK
	log.Debug("file rewritten", zap.Strings("rules", res.Rules), zap.String("mode", string(opts.Mode)))
	return res
}
