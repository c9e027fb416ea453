package rewrite

// Source is file content annotated with which bytes are code, as opposed to
// string literals, template text, or comments. Bracket matching only counts
// code bytes, so braces inside strings and comments never unbalance a block.
//
// Regular expression literals are not recognised; a '/' is always an operator.
type Source struct {
	Text string
	kind []byteKind
}

type byteKind uint8

const (
	kindCode byteKind = iota
	kindLiteral
	kindComment
)

type lexState int

const (
	stCode lexState = iota
	stLineComment
	stBlockComment
	stSingle
	stDouble
	stTemplate
)

// Scan lexes text once.
func Scan(text string) *Source {
	n := len(text)
	kind := make([]byteKind, n)

	state := stCode
	// Brace depth of each open ${...} interpolation, innermost last.
	var interp []int

	for i := 0; i < n; i++ {
		c := text[i]
		var next byte
		if i+1 < n {
			next = text[i+1]
		}

		switch state {
		case stCode:
			switch {
			case c == '/' && next == '/':
				state = stLineComment
				mark(kind, i, 2, kindComment)
				i++
			case c == '/' && next == '*':
				state = stBlockComment
				mark(kind, i, 2, kindComment)
				i++
			case c == '\'':
				state = stSingle
				kind[i] = kindLiteral
			case c == '"':
				state = stDouble
				kind[i] = kindLiteral
			case c == '`':
				state = stTemplate
				kind[i] = kindLiteral
			case c == '}' && len(interp) > 0 && interp[len(interp)-1] == 0:
				interp = interp[:len(interp)-1]
				state = stTemplate
				kind[i] = kindLiteral
			default:
				if len(interp) > 0 {
					switch c {
					case '{':
						interp[len(interp)-1]++
					case '}':
						interp[len(interp)-1]--
					}
				}
			}

		case stLineComment:
			if c == '\n' {
				state = stCode
			} else {
				kind[i] = kindComment
			}

		case stBlockComment:
			kind[i] = kindComment
			if c == '*' && next == '/' {
				state = stCode
				mark(kind, i, 2, kindComment)
				i++
			}

		case stSingle, stDouble:
			quote := byte('\'')
			if state == stDouble {
				quote = '"'
			}
			switch c {
			case '\\':
				mark(kind, i, 2, kindLiteral)
				i++
			case quote:
				state = stCode
				kind[i] = kindLiteral
			case '\n':
				// Unterminated literal; resync on the next line.
				state = stCode
			default:
				kind[i] = kindLiteral
			}

		case stTemplate:
			kind[i] = kindLiteral
			switch {
			case c == '\\':
				mark(kind, i, 2, kindLiteral)
				i++
			case c == '`':
				state = stCode
			case c == '$' && next == '{':
				mark(kind, i, 2, kindLiteral)
				interp = append(interp, 0)
				state = stCode
				i++
			}
		}
	}

	return &Source{Text: text, kind: kind}
}

func mark(kind []byteKind, i, n int, k byteKind) {
	for j := i; j < i+n && j < len(kind); j++ {
		kind[j] = k
	}
}

// IsCode reports whether byte i is code.
func (s *Source) IsCode(i int) bool {
	return i >= 0 && i < len(s.kind) && s.kind[i] == kindCode
}

func (s *Source) isComment(i int) bool {
	return i >= 0 && i < len(s.kind) && s.kind[i] == kindComment
}

func closerFor(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return 0
}

// Match returns the index of the bracket closing the one at open, or -1 when
// open is not a code bracket or the brackets are unbalanced.
func (s *Source) Match(open int) int {
	if !s.IsCode(open) || closerFor(s.Text[open]) == 0 {
		return -1
	}
	stack := []byte{closerFor(s.Text[open])}
	for i := open + 1; i < len(s.Text); i++ {
		if !s.IsCode(i) {
			continue
		}
		c := s.Text[i]
		switch c {
		case '(', '[', '{':
			stack = append(stack, closerFor(c))
		case ')', ']', '}':
			if stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// LastStatement returns the start offset of the final top-level statement
// within [from, to) and the offset just past its end, excluding trailing
// whitespace and semicolon. start == end means the range holds no statement.
func (s *Source) LastStatement(from, to int) (start, end int) {
	end = to
	for end > from && (isSpace(s.Text[end-1]) || s.isComment(end-1)) {
		end--
	}
	if end > from && s.Text[end-1] == ';' {
		end--
		for end > from && isSpace(s.Text[end-1]) {
			end--
		}
	}

	start = from
	depth := 0
	for i := from; i < end; i++ {
		if !s.IsCode(i) {
			continue
		}
		switch s.Text[i] {
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
		case '}':
			depth--
			if depth == 0 {
				start = i + 1
			}
		case ';':
			if depth == 0 {
				start = i + 1
			}
		}
	}

	// Leading whitespace and comments belong to no statement.
	for start < end && (isSpace(s.Text[start]) || s.isComment(start)) {
		start++
	}
	return start, end
}

// LineIndent returns the leading whitespace of the line containing offset i.
func (s *Source) LineIndent(i int) string {
	ls := i
	for ls > 0 && s.Text[ls-1] != '\n' {
		ls--
	}
	le := ls
	for le < len(s.Text) && (s.Text[le] == ' ' || s.Text[le] == '\t') {
		le++
	}
	return s.Text[ls:le]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
