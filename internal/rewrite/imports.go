package rewrite

import (
	"regexp"
	"strings"

	"routemend/internal/collab"
)

var (
	// One static import declaration. Named, default, namespace and
	// side-effect forms are covered; the specifier list may span lines.
	importDecl = regexp.MustCompile(`(?m)^[ \t]*import\s+(?:[\w$*{}\s,]+?\s+from\s+)?['"]([^'"\r\n]+)['"][ \t]*;?`)

	namedImport = regexp.MustCompile(`^([ \t]*)import\s*\{([^}]*)\}\s*from\s*(['"])([^'"\r\n]+)['"][ \t]*(;?)$`)
)

// ImportRewriter owns the import section of a file being integrated.
type ImportRewriter struct {
	Legacy        string // Symbol dropped from the request import
	RequestModule string
	RequestType   string
	Exceptions    string
	Responses     string
}

type importSpan struct {
	start, end int
	module     string
}

// Rewrite narrows the request import and inserts the collaborator imports
// after the last top-level import. Content already carrying the exceptions
// import is returned as is.
func (r ImportRewriter) Rewrite(content string) string {
	return r.rewrite(content, false)
}

// rewrite is Rewrite with the request import left alone when keepLegacy is set.
func (r ImportRewriter) rewrite(content string, keepLegacy bool) string {
	if strings.Contains(content, r.Exceptions) {
		return content
	}
	nl := lineEnding(content)

	if !keepLegacy {
		content = r.narrow(content)
	}
	content, missing := r.mergeBuilders(content)

	var block strings.Builder
	block.WriteString(collab.ImportLine(r.Exceptions, collab.KindNames()))
	block.WriteString(nl)
	if len(missing) > 0 {
		block.WriteString(collab.ImportLine(r.Responses, missing))
		block.WriteString(nl)
	}

	spans := findImports(content)
	if len(spans) == 0 {
		if content != "" && !blankLineAt(content, 0) {
			block.WriteString(nl)
		}
		return block.String() + content
	}

	last := spans[len(spans)-1]
	pos := strings.IndexByte(content[last.end:], '\n')
	if pos < 0 {
		// The import is the final line of the file.
		return content + nl + block.String()
	}
	pos += last.end + 1
	if pos < len(content) && !blankLineAt(content, pos) {
		block.WriteString(nl)
	}
	return content[:pos] + block.String() + content[pos:]
}

// Describe summarises the import edit for rule listings.
func (r ImportRewriter) Describe() string {
	return "drop " + r.Legacy + " from the " + r.RequestModule + " import keeping " + r.RequestType +
		", then import exception kinds from " + r.Exceptions + " and builders from " + r.Responses
}

// narrow removes the legacy symbol from every named import of the request
// module, deleting the declaration when nothing else remains.
func (r ImportRewriter) narrow(content string) string {
	spans := findImports(content)
	for i := len(spans) - 1; i >= 0; i-- {
		sp := spans[i]
		if sp.module != r.RequestModule {
			continue
		}
		m := namedImport.FindStringSubmatch(content[sp.start:sp.end])
		if m == nil {
			continue
		}
		indent, specs, quote, module, semi := m[1], m[2], m[3], m[4], m[5]

		var kept []string
		dropped := false
		for _, s := range strings.Split(specs, ",") {
			s = strings.TrimSpace(s)
			switch {
			case s == "":
			case s == r.Legacy:
				dropped = true
			default:
				kept = append(kept, s)
			}
		}
		if !dropped {
			continue
		}

		if len(kept) == 0 {
			start, end := lineBounds(content, sp.start, sp.end)
			content = content[:start] + content[end:]
			continue
		}

		line := indent + "import { " + strings.Join(kept, ", ") + " } from " + quote + module + quote + semi
		content = content[:sp.start] + line + content[sp.end:]
	}
	return content
}

// mergeBuilders adds the builders an existing named responses import does not
// bind yet to its specifier list. Without such an import every builder is
// returned as missing.
func (r ImportRewriter) mergeBuilders(content string) (string, []string) {
	for _, sp := range findImports(content) {
		if sp.module != r.Responses {
			continue
		}
		m := namedImport.FindStringSubmatch(content[sp.start:sp.end])
		if m == nil {
			continue
		}
		indent, specs, quote, module, semi := m[1], m[2], m[3], m[4], m[5]

		var kept []string
		bound := make(map[string]bool)
		for _, s := range strings.Split(specs, ",") {
			if s = strings.TrimSpace(s); s != "" {
				kept = append(kept, s)
				bound[localName(s)] = true
			}
		}
		added := false
		for _, b := range collab.Builders {
			if !bound[b] {
				kept = append(kept, b)
				added = true
			}
		}
		if !added {
			return content, nil
		}
		line := indent + "import { " + strings.Join(kept, ", ") + " } from " + quote + module + quote + semi
		return content[:sp.start] + line + content[sp.end:], nil
	}
	return content, collab.Builders
}

// legacyInCode reports whether the legacy symbol is still referenced in code
// outside import declarations.
func (r ImportRewriter) legacyInCode(content string) bool {
	src := Scan(content)
	spans := findImports(content)
	for _, m := range identRef(r.Legacy).FindAllStringSubmatchIndex(content, -1) {
		at := m[2]
		if src.IsCode(at) && !inSpans(spans, at) {
			return true
		}
	}
	return false
}

func inSpans(spans []importSpan, i int) bool {
	for _, sp := range spans {
		if i >= sp.start && i < sp.end {
			return true
		}
	}
	return false
}

// localName is the binding an import specifier introduces: B for "A as B".
func localName(spec string) string {
	if i := strings.LastIndex(spec, " as "); i >= 0 {
		return strings.TrimSpace(spec[i+4:])
	}
	return spec
}

// identRef matches name as a whole identifier; submatch 1 is the name.
func identRef(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\w$])(` + regexp.QuoteMeta(name) + `)(?:[^\w$]|$)`)
}

// findImports returns the top-level import declarations in source order.
func findImports(content string) []importSpan {
	src := Scan(content)
	var spans []importSpan
	for _, m := range importDecl.FindAllStringSubmatchIndex(content, -1) {
		kw := m[0] + strings.Index(content[m[0]:m[1]], "import")
		if !src.IsCode(kw) || depthAt(src, kw) != 0 {
			continue
		}
		spans = append(spans, importSpan{start: m[0], end: m[1], module: content[m[2]:m[3]]})
	}
	return spans
}

// depthAt is the bracket depth of code at offset i.
func depthAt(src *Source, i int) int {
	depth := 0
	for j := 0; j < i; j++ {
		if !src.IsCode(j) {
			continue
		}
		switch src.Text[j] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth
}

func lineEnding(content string) string {
	if strings.Contains(content, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// blankLineAt reports whether the line starting at offset i is empty or whitespace.
func blankLineAt(content string, i int) bool {
	end := strings.IndexByte(content[i:], '\n')
	if end < 0 {
		end = len(content) - i
	}
	return strings.TrimSpace(content[i:i+end]) == ""
}
