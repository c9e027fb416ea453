package rewrite

import (
	"regexp"
	"strings"

	"routemend/internal/collab"
)

const catchLogMessage = "Route handler error:"

var catchHead = regexp.MustCompile(`\bcatch\s*(\(\s*([A-Za-z_$][\w$]*)\s*(?::\s*[^)]*)?\)\s*)?\{`)

// consolidateCatch replaces the body of every catch clause whose final
// statement returns a legacy call with a log line and the generic error
// builder. The body is bounded by bracket matching, so nested blocks and
// braces inside strings or comments are handled exactly.
func consolidateCatch(legacyCall string) func(string) string {
	returnsLegacy := regexp.MustCompile(`^return\s+` + regexp.QuoteMeta(legacyCall) + `\s*\(`)

	return func(content string) string {
		matches := catchHead.FindAllStringSubmatchIndex(content, -1)
		if len(matches) == 0 {
			return content
		}
		src := Scan(content)
		nl := lineEnding(content)

		var b strings.Builder
		last := 0
		for _, m := range matches {
			if m[0] < last || !src.IsCode(m[0]) {
				continue
			}
			open := m[1] - 1
			end := src.Match(open)
			if end < 0 {
				continue
			}

			start, stop := src.LastStatement(open+1, end)
			if start == stop {
				continue
			}
			call := returnsLegacy.FindStringIndex(content[start:stop])
			if call == nil || src.Match(start+call[1]-1) != stop-1 {
				continue
			}

			header, binding := "catch (error) {", "error"
			if m[4] >= 0 {
				header, binding = content[m[0]:m[1]], content[m[4]:m[5]]
			}
			indent := src.LineIndent(m[0])

			b.WriteString(content[last:m[0]])
			b.WriteString(header)
			b.WriteString(nl + indent + `  console.error("` + catchLogMessage + `", ` + binding + `);`)
			b.WriteString(nl + indent + "  return " + collab.Error + "(" + binding + ");")
			b.WriteString(nl + indent + "}")
			last = end + 1
		}
		if last == 0 {
			return content
		}
		b.WriteString(content[last:])
		return b.String()
	}
}
