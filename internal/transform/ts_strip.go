package transform

import (
	"regexp"
	"strings"
)

var (
	reInterfaceDecl = regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?interface\s+[A-Za-z_$]`)
	reTypeAliasDecl = regexp.MustCompile(`^(?:export\s+)?type\s+[A-Za-z_$][\w$]*\s*(?:<[^=]*>)?\s*=`)
	reAsAssertion   = regexp.MustCompile(`\bas\s+[A-Za-z_$][\w$]*(?:\s*<[^<>]*>)?(?:\s*\[\])*`)
)

// stripTSTypes performs the light, conservative TypeScript-to-
// JavaScript normalization goja needs before it can parse a `ts` cell
// (goja only understands ECMAScript): it drops interface/type-alias
// declarations, strips `: Type` parameter and return-type annotations,
// `as Type` assertions, and `!` non-null assertions. None of these
// carry runtime meaning, so dropping them preserves behavior. This is
// not a TypeScript compiler — constructs beyond this list (enums,
// decorators, namespaces) are left untouched and will fail to parse.
func stripTSTypes(src string) (string, error) {
	withoutDecls, err := stripInterfacesAndTypeAliases(src)
	if err != nil {
		return "", err
	}
	withoutParams, err := stripParamAndReturnTypes(withoutDecls)
	if err != nil {
		return "", err
	}
	return stripAsAndNonNull(withoutParams), nil
}

func stripInterfacesAndTypeAliases(src string) (string, error) {
	runes := []rune(src)
	bounds, err := splitTopLevel(runes)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, rng := range bounds {
		trimmed, _, _ := trimStmt(runes, rng)
		if reInterfaceDecl.MatchString(trimmed) || reTypeAliasDecl.MatchString(trimmed) {
			continue
		}
		out.WriteString(string(runes[rng[0]:rng[1]]))
	}
	return out.String(), nil
}

// stripParamAndReturnTypes removes `: Type` annotations from function
// and arrow parameter lists, and the `: Type` return-type annotation
// that may follow a parameter list's closing paren. An arrow function
// is recognised only when its `)` directly precedes `=>`, so an arrow
// with a return-type annotation is left unchanged, parameter types
// included.
func stripParamAndReturnTypes(src string) (string, error) {
	runes := []rune(src)
	spans, err := scan(runes)
	if err != nil {
		return "", err
	}
	isLiteral := literalMask(runes, spans)
	n := len(runes)

	type paramRange struct{ open, close int }
	var ranges []paramRange

	for i := 0; i < n; i++ {
		if isLiteral[i] {
			continue
		}
		if !matchesKeywordAt(runes, isLiteral, i, "function") {
			continue
		}
		j := i + len("function")
		j = skipSpace(runes, j)
		if j < n && runes[j] == '*' {
			j++
			j = skipSpace(runes, j)
		}
		j = skipIdentifier(runes, j)
		j = skipSpace(runes, j)
		if j < n && runes[j] == '(' {
			if closeIdx, ok := matchingCloseForward(runes, isLiteral, j); ok {
				ranges = append(ranges, paramRange{j, closeIdx})
				i = closeIdx - 1
			}
		}
	}

	for i := 0; i < n-1; i++ {
		if isLiteral[i] || runes[i] != '=' || runes[i+1] != '>' {
			continue
		}
		k := i - 1
		for k >= 0 && isSpace(runes[k]) {
			k--
		}
		if k < 0 || runes[k] != ')' {
			continue
		}
		if openIdx, ok := matchingOpenBackward(runes, isLiteral, k); ok {
			ranges = append(ranges, paramRange{openIdx, k + 1})
		}
	}

	// sort by open index (ranges is built in two ascending passes, merge them)
	for a := 1; a < len(ranges); a++ {
		for b := a; b > 0 && ranges[b-1].open > ranges[b].open; b-- {
			ranges[b-1], ranges[b] = ranges[b], ranges[b-1]
		}
	}

	var out strings.Builder
	cursor := 0
	for _, rng := range ranges {
		if rng.open < cursor {
			continue // overlapping with a previously-handled range; skip
		}
		out.WriteString(string(runes[cursor:rng.open]))
		out.WriteString(stripParamListTypes(runes, isLiteral, rng.open, rng.close))
		cursor = rng.close

		retStart, retEnd, ok := findReturnTypeSpan(runes, isLiteral, cursor)
		if ok {
			cursor = retEnd
			_ = retStart
		}
	}
	out.WriteString(string(runes[cursor:]))

	return out.String(), nil
}

// stripParamListTypes strips `: Type` segments from a single parameter
// list, given as the half-open range [open,close) that spans the
// enclosing parens.
func stripParamListTypes(runes []rune, isLiteral []bool, open, close int) string {
	var out strings.Builder
	depth := 0
	i := open
	for i < close {
		if isLiteral[i] {
			out.WriteRune(runes[i])
			i++
			continue
		}
		switch runes[i] {
		case '(', '[', '{', '<':
			depth++
			out.WriteRune(runes[i])
			i++
			continue
		case ')', ']', '}', '>':
			depth--
			out.WriteRune(runes[i])
			i++
			continue
		case ':':
			if depth == 1 {
				j := i + 1
				for j < close {
					if isLiteral[j] {
						j++
						continue
					}
					switch runes[j] {
					case '(', '[', '{', '<':
						depth++
						j++
						continue
					case ')', ']', '}', '>':
						if depth == 1 {
							// terminator: the list's own closing paren
							goto done
						}
						depth--
						j++
						continue
					case ',', '=':
						if depth == 1 {
							goto done
						}
					}
					j++
				}
			done:
				i = j
				continue
			}
		}
		out.WriteRune(runes[i])
		i++
	}
	return out.String()
}

// findReturnTypeSpan looks for `: Type` immediately after a parameter
// list's closing paren, ending at the following `{` or `=>`.
func findReturnTypeSpan(runes []rune, isLiteral []bool, afterClose int) (start, end int, ok bool) {
	i := afterClose
	n := len(runes)
	for i < n && isSpace(runes[i]) {
		i++
	}
	if i >= n || runes[i] != ':' {
		return 0, 0, false
	}
	start = i
	i++
	for i < n {
		if isLiteral[i] {
			i++
			continue
		}
		if runes[i] == '{' {
			return start, i, true
		}
		if runes[i] == '=' && i+1 < n && runes[i+1] == '>' {
			return start, i, true
		}
		i++
	}
	return 0, 0, false
}

func stripAsAndNonNull(src string) string {
	withoutAs := reAsAssertion.ReplaceAllString(src, "")
	return stripNonNullAssertions(withoutAs)
}

// stripNonNullAssertions drops a `!` immediately following an
// identifier, `)`, or `]`, as long as it isn't part of `!=`/`!==`.
func stripNonNullAssertions(src string) string {
	runes := []rune(src)
	spans, err := scan(runes)
	if err != nil {
		return src
	}
	isLiteral := literalMask(runes, spans)

	var out strings.Builder
	for i := 0; i < len(runes); i++ {
		if !isLiteral[i] && runes[i] == '!' && i > 0 {
			prev := runes[i-1]
			prevIsOperand := isIdentRune(prev) || prev == ')' || prev == ']'
			nextIsEquals := i+1 < len(runes) && runes[i+1] == '='
			if prevIsOperand && !nextIsEquals {
				continue
			}
		}
		out.WriteRune(runes[i])
	}
	return out.String()
}

func matchesKeywordAt(runes []rune, isLiteral []bool, i int, kw string) bool {
	if isLiteral[i] {
		return false
	}
	kr := []rune(kw)
	if i+len(kr) > len(runes) {
		return false
	}
	for j, r := range kr {
		if isLiteral[i+j] || runes[i+j] != r {
			return false
		}
	}
	if i > 0 && isIdentRune(runes[i-1]) {
		return false
	}
	end := i + len(kr)
	if end < len(runes) && isIdentRune(runes[end]) {
		return false
	}
	return true
}

func skipSpace(runes []rune, i int) int {
	for i < len(runes) && isSpace(runes[i]) {
		i++
	}
	return i
}

func skipIdentifier(runes []rune, i int) int {
	for i < len(runes) && isIdentRune(runes[i]) {
		i++
	}
	return i
}

// matchingCloseForward finds the index one past the ')' matching the
// '(' at openIdx, treating characters inside literal spans as opaque.
func matchingCloseForward(runes []rune, isLiteral []bool, openIdx int) (int, bool) {
	depth := 0
	for i := openIdx; i < len(runes); i++ {
		if isLiteral[i] {
			continue
		}
		switch runes[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// matchingOpenBackward finds the index of the '(' matching the ')' at
// closeIdx, scanning backward.
func matchingOpenBackward(runes []rune, isLiteral []bool, closeIdx int) (int, bool) {
	depth := 0
	for i := closeIdx; i >= 0; i-- {
		if isLiteral[i] {
			continue
		}
		switch runes[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
