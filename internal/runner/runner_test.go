package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"routemend/internal/config"
	"routemend/internal/discovery"
	"routemend/internal/model"
	"routemend/internal/rewrite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const legacy = `import { NextRequest, NextResponse } from "next/server";

export async function GET(request: NextRequest) {
  return NextResponse.json({ success: true, data: users });
}
`

const integrated = `import { NotFoundError } from "@/lib/utils/error-handler";

export async function GET() {
  throw new NotFoundError("x");
}
`

const plain = `export async function GET() {
  return new Response("ok");
}
`

// writeTree creates files under a temp root and returns the root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	require.NoError(t, filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[p] = string(b)
		return nil
	}))
	return out
}

// recordingFS wraps OSFS, failing writes to selected paths and recording the rest.
type recordingFS struct {
	OSFS
	failWrite map[string]bool
	failRead  map[string]bool

	mu     sync.Mutex
	writes []string
}

func (f *recordingFS) ReadFile(path string) ([]byte, error) {
	if f.failRead[path] {
		return nil, errors.New("permission denied")
	}
	return f.OSFS.ReadFile(path)
}

func (f *recordingFS) WriteFile(path string, data []byte) error {
	if f.failWrite[path] {
		return errors.New("disk full")
	}
	f.mu.Lock()
	f.writes = append(f.writes, path)
	f.mu.Unlock()
	return f.OSFS.WriteFile(path, data)
}

func newRunner(t *testing.T, opts ...Option) *Runner {
	cfg := config.Default()
	return New(rewrite.New(cfg), discovery.New(cfg.FileName, cfg.ExcludeDirs), zaptest.NewLogger(t), opts...)
}

func TestRunBatchResilience(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/route.ts": legacy,
		"b/route.ts": legacy,
		"c/route.ts": legacy,
	})
	bad := filepath.Join(root, "b", "route.ts")
	fs := &recordingFS{failWrite: map[string]bool{bad: true}}

	rep, err := newRunner(t, WithFS(fs)).Run(context.Background(), Options{Root: root, Mode: model.ModeApply})
	require.NoError(t, err)
	require.Len(t, rep.Results, 3)

	assert.Equal(t, model.StatusOK, rep.Results[0].Status)
	assert.Equal(t, model.StatusFailed, rep.Results[1].Status)
	assert.Equal(t, "disk full", rep.Results[1].Diagnostic)
	assert.Equal(t, model.StatusOK, rep.Results[2].Status)
	assert.Equal(t, model.RunSummary{OK: 2, Failed: 1, Changed: 2}, rep.Summary)

	for _, dir := range []string{"a", "c"} {
		got, err := os.ReadFile(filepath.Join(root, dir, "route.ts"))
		require.NoError(t, err)
		assert.Contains(t, string(got), "return successResponse(users);")
	}
	got, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Equal(t, legacy, string(got))
}

func TestRunReadFailure(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/route.ts": legacy,
		"b/route.ts": legacy,
	})
	fs := &recordingFS{failRead: map[string]bool{filepath.Join(root, "a", "route.ts"): true}}

	rep, err := newRunner(t, WithFS(fs)).Run(context.Background(), Options{Root: root})
	require.NoError(t, err)

	assert.Equal(t, model.StatusFailed, rep.Results[0].Status)
	assert.Equal(t, "permission denied", rep.Results[0].Diagnostic)
	assert.Equal(t, model.StatusOK, rep.Results[1].Status)
	assert.Equal(t, model.ModeApply, rep.Mode, "apply is the default mode")
}

func TestRunDryRunFidelity(t *testing.T) {
	files := map[string]string{
		"users/route.ts":        legacy,
		"orders/route.ts":       legacy,
		"health/route.ts":       plain,
		"done/route.ts":         integrated,
		"users/helper.ts":       legacy,
		"node_modules/route.ts": legacy,
	}
	root := writeTree(t, files)
	before := snapshot(t, root)

	dry, err := newRunner(t).Run(context.Background(), Options{Root: root, Mode: model.ModeDryRun})
	require.NoError(t, err)
	assert.Equal(t, before, snapshot(t, root), "dry-run must not touch disk")
	assert.Len(t, dry.Results, 4)

	applied, err := newRunner(t).Run(context.Background(), Options{Root: root, Mode: model.ModeApply})
	require.NoError(t, err)
	assert.Equal(t, dry.Changed(), applied.Changed())

	after := snapshot(t, root)
	var modified []string
	for p, content := range after {
		if before[p] != content {
			modified = append(modified, p)
		}
	}
	sort.Strings(modified)
	assert.Equal(t, dry.Changed(), modified)
}

func TestRunSkipsByClassification(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/route.ts": integrated,
		"b/route.ts": plain,
	})
	fs := &recordingFS{}

	rep, err := newRunner(t, WithFS(fs)).Run(context.Background(), Options{Root: root})
	require.NoError(t, err)

	require.Len(t, rep.Results, 2)
	assert.Equal(t, model.StatusSkipped, rep.Results[0].Status)
	assert.Equal(t, "already-integrated", rep.Results[0].Diagnostic)
	assert.Equal(t, model.StatusSkipped, rep.Results[1].Status)
	assert.Equal(t, "not-applicable", rep.Results[1].Diagnostic)
	assert.Empty(t, fs.writes)
	assert.Equal(t, 2, rep.Summary.Skipped)
}

func TestRunOrderIsStableWithJobs(t *testing.T) {
	files := map[string]string{}
	for _, d := range []string{"k", "b", "x", "a", "m", "c", "z", "q"} {
		files[d+"/route.ts"] = legacy
	}
	root := writeTree(t, files)

	rep, err := newRunner(t).Run(context.Background(), Options{Root: root, Mode: model.ModeDryRun, Jobs: 4})
	require.NoError(t, err)

	var got []string
	for _, r := range rep.Results {
		got = append(got, r.Path)
	}
	assert.True(t, sort.StringsAreSorted(got), got)
	assert.Len(t, got, 8)
}

func TestRunRootInaccessible(t *testing.T) {
	_, err := newRunner(t).Run(context.Background(), Options{Root: filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, discovery.ErrRootInaccessible)
}

func TestRunExplicitPaths(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/route.ts": legacy,
		"b/route.ts": legacy,
	})
	only := filepath.Join(root, "b", "route.ts")

	rep, err := newRunner(t).Run(context.Background(), Options{Root: root, Paths: []string{only}})
	require.NoError(t, err)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, []string{only}, rep.Changed())

	untouched, err := os.ReadFile(filepath.Join(root, "a", "route.ts"))
	require.NoError(t, err)
	assert.Equal(t, legacy, string(untouched))
}

type rejectAll struct{}

func (rejectAll) Regression(context.Context, string, string) error {
	return errors.New("syntax error at line 3 after rewrite")
}

func TestRunVerifyFailureIsNotWritten(t *testing.T) {
	for _, mode := range []model.Mode{model.ModeDryRun, model.ModeApply} {
		t.Run(string(mode), func(t *testing.T) {
			root := writeTree(t, map[string]string{"a/route.ts": legacy})
			fs := &recordingFS{}

			rep, err := newRunner(t, WithFS(fs), WithVerifier(rejectAll{})).Run(context.Background(), Options{Root: root, Mode: mode})
			require.NoError(t, err)

			assert.Equal(t, model.StatusFailed, rep.Results[0].Status)
			assert.Equal(t, "syntax error at line 3 after rewrite", rep.Results[0].Diagnostic)
			assert.Empty(t, rep.Changed())
			assert.Empty(t, fs.writes)
		})
	}
}

func TestRunDiff(t *testing.T) {
	root := writeTree(t, map[string]string{"a/route.ts": legacy})

	rep, err := newRunner(t).Run(context.Background(), Options{Root: root, Mode: model.ModeDryRun, Diff: true})
	require.NoError(t, err)

	d := rep.Results[0].Diff
	assert.Contains(t, d, "-  return NextResponse.json({ success: true, data: users });")
	assert.Contains(t, d, "+  return successResponse(users);")
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, rewrite.RulesVersion, rep.RulesVersion)
	assert.Equal(t, "migrate", rep.Stage)
}

func TestRunPruneStage(t *testing.T) {
	cfg := config.Default()
	root := writeTree(t, map[string]string{"a/route.ts": integrated, "b/route.ts": legacy})
	r := New(rewrite.NewPruner(cfg), discovery.New(cfg.FileName, cfg.ExcludeDirs), zaptest.NewLogger(t))

	rep, err := r.Run(context.Background(), Options{Root: root, Mode: model.ModeDryRun})
	require.NoError(t, err)

	assert.Equal(t, "prune", rep.Stage)
	assert.Equal(t, model.StatusOK, rep.Results[0].Status)
	assert.False(t, rep.Results[0].Changed, "every imported name is used")
	assert.Equal(t, model.StatusSkipped, rep.Results[1].Status)
	assert.Equal(t, "needs-integration", rep.Results[1].Diagnostic)
}

func TestRunCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a/route.ts": legacy})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := newRunner(t).Run(ctx, Options{Root: root})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.StatusFailed, rep.Results[0].Status)

	got, rerr := os.ReadFile(filepath.Join(root, "a", "route.ts"))
	require.NoError(t, rerr)
	assert.Equal(t, legacy, string(got))
}
