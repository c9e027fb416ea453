package rewrite

import (
	"sort"
	"strings"

	"routemend/internal/config"
	"routemend/internal/model"
)

// Pruner narrows the collaborator imports of integrated files to the names
// the file actually uses.
type Pruner struct {
	gate       Gate
	legacy     string
	exceptions string
	responses  string
}

// NewPruner builds a pruner from configuration.
func NewPruner(cfg *config.Config) *Pruner {
	return &Pruner{
		gate:       Gate{Marker: cfg.Marker(), Legacy: cfg.Tokens.Legacy},
		legacy:     cfg.Tokens.Legacy,
		exceptions: cfg.Modules.Exceptions,
		responses:  cfg.Modules.Responses,
	}
}

func (p *Pruner) Name() string { return "prune" }

func (p *Pruner) Classify(content string) model.Classification {
	return p.gate.Classify(content)
}

func (p *Pruner) Eligible(c model.Classification) bool {
	return c == model.AlreadyIntegrated
}

// Transform rewrites each collaborator import to its used names, sorted. An
// import with no used names is removed, except the exceptions import stays
// while the legacy token still occurs so the file keeps its classification.
func (p *Pruner) Transform(content string) Result {
	res := Result{Content: content}
	if !p.Eligible(p.Classify(content)) {
		return res
	}

	out := content
	spans := findImports(out)
	for i := len(spans) - 1; i >= 0; i-- {
		sp := spans[i]
		var id string
		switch sp.module {
		case p.exceptions:
			id = "prune-exceptions"
		case p.responses:
			id = "prune-responses"
		default:
			continue
		}
		m := namedImport.FindStringSubmatch(out[sp.start:sp.end])
		if m == nil {
			continue
		}
		indent, specs, quote, module, semi := m[1], m[2], m[3], m[4], m[5]

		var names, used []string
		for _, s := range strings.Split(specs, ",") {
			if s = strings.TrimSpace(s); s != "" {
				names = append(names, s)
			}
		}
		src := Scan(out)
		for _, n := range names {
			if referenced(src, n, sp.start, sp.end) {
				used = append(used, n)
			}
		}
		if len(used) == len(names) {
			continue
		}

		if len(used) == 0 {
			if sp.module == p.exceptions && strings.Contains(out, p.legacy) {
				continue
			}
			start, end := lineBounds(out, sp.start, sp.end)
			out = out[:start] + out[end:]
		} else {
			sort.Strings(used)
			line := indent + "import { " + strings.Join(used, ", ") + " } from " + quote + module + quote + semi
			out = out[:sp.start] + line + out[sp.end:]
		}
		res.Applied = append([]string{id}, res.Applied...)
	}

	res.Content = out
	res.Changed = out != content
	return res
}

// referenced reports whether name occurs in code outside [skipFrom, skipTo).
// A specifier of the form "A as B" is referenced through B.
func referenced(src *Source, name string, skipFrom, skipTo int) bool {
	for _, m := range identRef(localName(name)).FindAllStringSubmatchIndex(src.Text, -1) {
		at := m[2]
		if at >= skipFrom && at < skipTo {
			continue
		}
		if src.IsCode(at) {
			return true
		}
	}
	return false
}

// lineBounds widens [start, end) to whole lines including the line break.
func lineBounds(content string, start, end int) (int, int) {
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	if end < len(content) && content[end] == '\r' {
		end++
	}
	if end < len(content) && content[end] == '\n' {
		end++
	}
	return start, end
}
