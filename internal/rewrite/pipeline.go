// Package rewrite holds the transformation engine: the integration gate, the
// import rewriter, the ordered rule table and the prune pass.
package rewrite

import (
	"routemend/internal/config"
	"routemend/internal/model"
)

// ImportsRuleID is reported when the import section changed.
const ImportsRuleID = "imports"

// Result is the output of one transformation.
type Result struct {
	Content string
	Changed bool     // Content differs from the input
	Applied []string // IDs of the steps that changed something, in order
}

// Engine migrates route handlers to the collaborator modules.
type Engine struct {
	gate    Gate
	imports ImportRewriter
	rules   []Rule
}

// New builds an engine from configuration.
func New(cfg *config.Config) *Engine {
	return &Engine{
		gate: Gate{Marker: cfg.Marker(), Legacy: cfg.Tokens.Legacy},
		imports: ImportRewriter{
			Legacy:        cfg.Tokens.Legacy,
			RequestModule: cfg.Modules.Request,
			RequestType:   cfg.Tokens.RequestType,
			Exceptions:    cfg.Modules.Exceptions,
			Responses:     cfg.Modules.Responses,
		},
		rules: BuildRules(cfg.Tokens.LegacyCall, cfg.Rules.ExtendedStatus),
	}
}

func (e *Engine) Name() string { return "migrate" }

func (e *Engine) Classify(content string) model.Classification {
	return e.gate.Classify(content)
}

// Eligible reports whether files of class c are transformed.
func (e *Engine) Eligible(c model.Classification) bool {
	return c == model.NeedsIntegration
}

// Rules returns the rule table in application order.
func (e *Engine) Rules() []Rule { return e.rules }

// Imports returns the import rewriter.
func (e *Engine) Imports() ImportRewriter { return e.imports }

// Transform applies every rule once in order, then rewrites the imports.
// The legacy symbol stays imported while code outside the imports still
// references it. Content the gate does not classify as needing integration
// is returned unchanged, which makes a second pass over the output a no-op.
func (e *Engine) Transform(content string) Result {
	res := Result{Content: content}
	if !e.Eligible(e.Classify(content)) {
		return res
	}

	out := content
	var fired []string
	for _, r := range e.rules {
		next := r.Apply(out)
		if next != out {
			fired = append(fired, r.ID)
		}
		out = next
	}

	withImports := e.imports.rewrite(out, e.imports.legacyInCode(out))
	if withImports != out {
		res.Applied = append(res.Applied, ImportsRuleID)
	}
	res.Applied = append(res.Applied, fired...)

	res.Content = withImports
	res.Changed = withImports != content
	return res
}
