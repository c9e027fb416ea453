// Package diffview renders unified diffs of rewritten files.
package diffview

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sourcegraph/go-diff/diff"
)

// ContextLines is the number of unchanged lines kept around each change.
const ContextLines = 3

type op struct {
	kind     byte // ' ', '-' or '+'
	text     string
	old, new int // Lines of each side consumed before this op
}

// Unified returns the unified diff between before and after, labelled
// a/path and b/path. Identical inputs yield an empty string.
func Unified(path, before, after string) (string, error) {
	hunks := Hunks(before, after)
	if len(hunks) == 0 {
		return "", nil
	}
	out, err := diff.PrintFileDiff(&diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    hunks,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Hunks computes the changed regions between before and after.
func Hunks(before, after string) []*diff.Hunk {
	if before == after {
		return nil
	}
	return group(lineOps(before, after), ContextLines)
}

// Stat counts added and removed lines.
func Stat(before, after string) (added, removed int) {
	for _, o := range lineOps(before, after) {
		switch o.kind {
		case '+':
			added++
		case '-':
			removed++
		}
	}
	return added, removed
}

func lineOps(before, after string) []op {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []op
	oldN, newN := 0, 0
	for _, d := range diffs {
		for _, l := range strings.SplitAfter(d.Text, "\n") {
			if l == "" {
				continue
			}
			l = strings.TrimSuffix(l, "\n")
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, op{kind: ' ', text: l, old: oldN, new: newN})
				oldN++
				newN++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, op{kind: '-', text: l, old: oldN, new: newN})
				oldN++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, op{kind: '+', text: l, old: oldN, new: newN})
				newN++
			}
		}
	}
	return ops
}

// group merges changes separated by at most 2*ctx unchanged lines into one hunk.
func group(ops []op, ctx int) []*diff.Hunk {
	var hunks []*diff.Hunk
	i := 0
	for i < len(ops) {
		if ops[i].kind == ' ' {
			i++
			continue
		}
		start := max(0, i-ctx)
		last := i
		j := i
		for j < len(ops) {
			if ops[j].kind != ' ' {
				last = j
				j++
				continue
			}
			k := j
			for k < len(ops) && ops[k].kind == ' ' {
				k++
			}
			if k == len(ops) || k-j > 2*ctx {
				break
			}
			j = k
		}
		stop := min(len(ops), last+1+ctx)
		hunks = append(hunks, hunk(ops[start:stop]))
		i = stop
	}
	return hunks
}

func hunk(ops []op) *diff.Hunk {
	h := &diff.Hunk{
		OrigStartLine: int32(ops[0].old) + 1,
		NewStartLine:  int32(ops[0].new) + 1,
	}
	var body strings.Builder
	for _, o := range ops {
		switch o.kind {
		case ' ':
			h.OrigLines++
			h.NewLines++
		case '-':
			h.OrigLines++
		case '+':
			h.NewLines++
		}
		body.WriteByte(o.kind)
		body.WriteString(o.text)
		body.WriteByte('\n')
	}
	// An empty side starts at the line before the hunk.
	if h.OrigLines == 0 {
		h.OrigStartLine--
	}
	if h.NewLines == 0 {
		h.NewStartLine--
	}
	h.Body = []byte(body.String())
	return h
}
