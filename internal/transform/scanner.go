// Package transform implements the Source Transformer (spec.md §4.6):
// two conservative, depth-aware string rewriters that promote
// top-level declarations onto the shared Execution Context and wrap
// the remaining body so the last expression's value can be captured.
//
// Neither pass is a real parser. Both operate over a rune stream that
// has been pre-classified into "code" and "literal" (string/template/
// comment/regex) spans, exactly as spec.md §4.6 asks: "conservative
// string rewriters that respect string literals, block/line comments,
// and grouping".
package transform

import "fmt"

// spanKind classifies a contiguous run of the source.
type spanKind int

const (
	spanCode spanKind = iota
	spanLiteral
)

// span is a half-open [Start, End) range over the rune slice.
type span struct {
	kind  spanKind
	start int
	end   int
}

// scan classifies src into alternating code/literal spans. Literal
// spans cover line comments, block comments, string literals,
// template literals (including nested `${...}` expressions, which may
// themselves contain further literals), and regex literals.
//
// Regex-vs-division disambiguation uses the standard heuristic: a `/`
// begins a regex literal when the last significant token before it is
// not something a value could follow directly (identifier, number,
// `)`, `]`, `}`, or a post-increment); everywhere else `/` is a binary
// operator and left as ordinary code.
func scan(src []rune) ([]span, error) {
	var spans []span
	codeStart := 0
	lastSignificant := "" // last non-whitespace code token seen, for regex disambiguation

	flushCode := func(end int) {
		if end > codeStart {
			spans = append(spans, span{kind: spanCode, start: codeStart, end: end})
		}
	}

	i := 0
	n := len(src)
	for i < n {
		c := src[i]

		switch {
		case c == '/' && i+1 < n && src[i+1] == '/':
			flushCode(i)
			start := i
			for i < n && src[i] != '\n' {
				i++
			}
			spans = append(spans, span{kind: spanLiteral, start: start, end: i})
			codeStart = i
			continue

		case c == '/' && i+1 < n && src[i+1] == '*':
			flushCode(i)
			start := i
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			if i+1 >= n {
				return nil, fmt.Errorf("unterminated block comment")
			}
			i += 2
			spans = append(spans, span{kind: spanLiteral, start: start, end: i})
			codeStart = i
			continue

		case c == '"' || c == '\'':
			flushCode(i)
			start := i
			end, err := scanQuoted(src, i, c)
			if err != nil {
				return nil, err
			}
			i = end
			spans = append(spans, span{kind: spanLiteral, start: start, end: i})
			codeStart = i
			lastSignificant = "ident"
			continue

		case c == '`':
			flushCode(i)
			start := i
			end, err := scanTemplate(src, i)
			if err != nil {
				return nil, err
			}
			i = end
			spans = append(spans, span{kind: spanLiteral, start: start, end: i})
			codeStart = i
			lastSignificant = "ident"
			continue

		case c == '/' && regexAllowed(lastSignificant):
			if end, ok := tryScanRegex(src, i); ok {
				flushCode(i)
				spans = append(spans, span{kind: spanLiteral, start: i, end: end})
				i = end
				codeStart = i
				lastSignificant = "ident"
				continue
			}
			i++

		default:
			if !isSpace(c) {
				lastSignificant = significantToken(src, i)
			}
			i++
		}
	}

	flushCode(n)
	return spans, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// significantToken returns a short marker for the kind of token ending
// at i (used only to disambiguate regex-vs-division).
func significantToken(src []rune, i int) string {
	c := src[i]
	switch {
	case c == ')' || c == ']' || c == '}':
		return "close"
	case (c == '+' || c == '-') && i > 0 && src[i-1] == c:
		// Second character of a postfix `++`/`--`: a value just ended.
		return "close"
	case isIdentRune(c):
		return "ident"
	default:
		return "op"
	}
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func regexAllowed(last string) bool {
	return last != "ident" && last != "close"
}

func scanQuoted(src []rune, i int, quote rune) (int, error) {
	i++ // skip opening quote
	n := len(src)
	for i < n {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if src[i] == quote {
			return i + 1, nil
		}
		if src[i] == '\n' {
			return 0, fmt.Errorf("unterminated string literal")
		}
		i++
	}
	return 0, fmt.Errorf("unterminated string literal")
}

// scanTemplate scans a template literal starting at the backtick at
// index i, recursing into `${...}` substitutions (which may contain
// further template/string literals and balanced braces; comments and
// regex literals inside a substitution are not recognised).
func scanTemplate(src []rune, i int) (int, error) {
	i++ // skip opening backtick
	n := len(src)
	for i < n {
		switch {
		case src[i] == '\\':
			i += 2
		case src[i] == '`':
			return i + 1, nil
		case src[i] == '$' && i+1 < n && src[i+1] == '{':
			i += 2
			depth := 1
			for i < n && depth > 0 {
				switch {
				case src[i] == '{':
					depth++
					i++
				case src[i] == '}':
					depth--
					i++
				case src[i] == '"' || src[i] == '\'':
					end, err := scanQuoted(src, i, src[i])
					if err != nil {
						return 0, err
					}
					i = end
				case src[i] == '`':
					end, err := scanTemplate(src, i)
					if err != nil {
						return 0, err
					}
					i = end
				default:
					i++
				}
			}
		default:
			i++
		}
	}
	return 0, fmt.Errorf("unterminated template literal")
}

func tryScanRegex(src []rune, i int) (int, bool) {
	n := len(src)
	j := i + 1
	inClass := false
	for j < n {
		switch {
		case src[j] == '\\':
			j += 2
		case src[j] == '\n':
			return 0, false
		case src[j] == '[':
			inClass = true
			j++
		case src[j] == ']':
			inClass = false
			j++
		case src[j] == '/' && !inClass:
			j++
			for j < n && isIdentRune(src[j]) {
				j++
			}
			return j, true
		default:
			j++
		}
	}
	return 0, false
}

// isLiteralAt reports whether absolute index pos falls inside a literal span.
func isLiteralAt(spans []span, pos int) bool {
	for _, s := range spans {
		if s.kind == spanLiteral && pos >= s.start && pos < s.end {
			return true
		}
	}
	return false
}

// literalMask expands spans into a per-index lookup table, one entry
// longer than src so a trailing end-of-string check never runs out of
// bounds.
func literalMask(src []rune, spans []span) []bool {
	mask := make([]bool, len(src)+1)
	for _, s := range spans {
		if s.kind == spanLiteral {
			for i := s.start; i < s.end; i++ {
				mask[i] = true
			}
		}
	}
	return mask
}
