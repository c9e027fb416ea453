// Package verify re-parses rewritten route handlers to catch rewrites that
// broke the file's syntax.
package verify

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrSyntax is wrapped by every regression error.
var ErrSyntax = errors.New("syntax error")

// maxDepth bounds recursion on heavily malformed input.
const maxDepth = 1000

// Checker parses TypeScript with tree-sitter. It is safe for concurrent use;
// each call gets its own parser.
type Checker struct{}

// New returns a Checker.
func New() *Checker {
	return &Checker{}
}

// FirstError returns the 1-based line of the first ERROR or MISSING node in
// content, or 0 when the content parses cleanly.
func (c *Checker) FirstError(ctx context.Context, content string) (int, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(content))
	if err != nil {
		return 0, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return 0, nil
	}
	if n := firstError(root, 0); n != nil {
		return int(n.StartPoint().Row) + 1, nil
	}
	return int(root.StartPoint().Row) + 1, nil
}

// Regression fails only when after has a syntax error and before did not, so
// files that were already broken are not blamed on the rewrite.
func (c *Checker) Regression(ctx context.Context, before, after string) error {
	line, err := c.FirstError(ctx, after)
	if err != nil || line == 0 {
		return err
	}
	prior, err := c.FirstError(ctx, before)
	if err != nil {
		return err
	}
	if prior != 0 {
		return nil
	}
	return fmt.Errorf("%w at line %d after rewrite", ErrSyntax, line)
}

func firstError(n *sitter.Node, depth int) *sitter.Node {
	if depth > maxDepth {
		return nil
	}
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstError(n.Child(i), depth+1); found != nil {
			return found
		}
	}
	return nil
}
