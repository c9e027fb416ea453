package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"routemend/internal/collab"
)

// RulesVersion identifies the rule table. Bump it whenever a rule's accepted
// shapes or output change.
const RulesVersion = "2024.1"

// Category groups rules by what they rewrite.
type Category string

const (
	CategoryError   Category = "error"
	CategorySuccess Category = "success"
	CategoryCreated Category = "created"
	CategoryCatch   Category = "catch"
)

// Rule is one entry of the ordered rule table.
type Rule struct {
	ID          string
	Category    Category
	Template    string // Human-readable shape of the matched code
	Replacement string // Human-readable shape of the output

	apply func(content string) string
}

// Apply runs the rule over content once.
func (r Rule) Apply(content string) string {
	return r.apply(content)
}

const (
	identPattern = `([A-Za-z_$][\w$]*)`
	closeCall    = `\s*,?\s*\)[ \t]*;?`
)

// literalPattern matches a quoted string or an interpolation-free template literal.
var literalPattern = `("(?:[^"\\\r\n]|\\.)*"|'(?:[^'\\\r\n]|\\.)*'|` +
	"`" + `(?:[^` + "`" + `\\$]|\\.)*` + "`" + `)`

func statusPattern(status int) string {
	return fmt.Sprintf(`\{\s*status\s*:\s*%d\s*,?\s*\}`, status)
}

// errorStatuses lists the error rules in application order.
var errorStatuses = []int{401, 403, 400, 404, 409}

// extendedStatuses are appended when extended rules are enabled.
var extendedStatuses = []int{429, 502}

// BuildRules returns the rule table for legacyCall in application order.
func BuildRules(legacyCall string, extended bool) []Rule {
	call := `\breturn\s+` + regexp.QuoteMeta(legacyCall) + `\(\s*`

	statuses := append([]int(nil), errorStatuses...)
	if extended {
		statuses = append(statuses, extendedStatuses...)
	}

	var rules []Rule
	for _, status := range statuses {
		kind, ok := collab.KindForStatus(status)
		if !ok {
			continue
		}
		re := regexp.MustCompile(call +
			`\{\s*(?:success\s*:\s*false\s*,\s*)?error\s*:\s*` + literalPattern + `\s*,?\s*\}\s*,\s*` +
			statusPattern(status) + closeCall)
		rules = append(rules, Rule{
			ID:          fmt.Sprintf("error-%d", status),
			Category:    CategoryError,
			Template:    fmt.Sprintf("return %s({ success: false, error: L }, { status: %d })", legacyCall, status),
			Replacement: fmt.Sprintf("throw new %s(L);", kind.Name),
			apply:       replacer("throw new "+kind.Name+"(${1});", re),
		})
	}

	dataObject := `\{\s*(?:success\s*:\s*true\s*,\s*)?data\s*:\s*` + identPattern + `\s*,?\s*\}`

	rules = append(rules,
		Rule{
			ID:          "success",
			Category:    CategorySuccess,
			Template:    fmt.Sprintf("return %s({ success: true, data: I }[, { status: 200 }])", legacyCall),
			Replacement: fmt.Sprintf("return %s(I);", collab.Success),
			apply: replacer("return "+collab.Success+"(${1});",
				regexp.MustCompile(call+dataObject+`(?:\s*,\s*`+statusPattern(200)+`)?`+closeCall)),
		},
		Rule{
			ID:          "created",
			Category:    CategoryCreated,
			Template:    fmt.Sprintf("return %s(I | { success: true, data: I }, { status: 201 })", legacyCall),
			Replacement: fmt.Sprintf("return %s(I);", collab.Created),
			apply: replacer("return "+collab.Created+"(${1});",
				regexp.MustCompile(call+identPattern+`\s*,\s*`+statusPattern(201)+closeCall),
				regexp.MustCompile(call+dataObject+`\s*,\s*`+statusPattern(201)+closeCall)),
		},
		Rule{
			ID:          "catch",
			Category:    CategoryCatch,
			Template:    fmt.Sprintf("catch (e) { ...; return %s(...) }", legacyCall),
			Replacement: fmt.Sprintf("catch (e) { console.error(%q, e); return %s(e); }", catchLogMessage, collab.Error),
			apply:       consolidateCatch(legacyCall),
		},
	)
	return rules
}

// replacer rewrites every match of each pattern that starts in code.
func replacer(template string, patterns ...*regexp.Regexp) func(string) string {
	return func(content string) string {
		for _, re := range patterns {
			content = replaceInCode(content, re, template)
		}
		return content
	}
}

func replaceInCode(content string, re *regexp.Regexp, template string) string {
	matches := re.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content
	}
	src := Scan(content)

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if !src.IsCode(m[0]) {
			continue
		}
		b.WriteString(content[last:m[0]])
		b.Write(re.ExpandString(nil, template, content, m))
		last = m[1]
	}
	if last == 0 {
		return content
	}
	b.WriteString(content[last:])
	return b.String()
}
