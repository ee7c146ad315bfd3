package transform

import (
	"regexp"
	"strings"
)

var (
	reVarDecl   = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::[^=;]+)?=`)
	reFuncDecl  = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(async\s+)?function(\s*\*\s*|\s+)([A-Za-z_$][\w$]*)\s*\(`)
	reClassDecl = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?class\s+([A-Za-z_$][\w$]*)\b`)
)

// promoteDeclarations implements Pass A (spec.md §4.6): top-level
// function and class declarations, and const/let/var declarations of
// a single name with an initializer, are rewritten into an assignment
// onto globalThis, so the value survives past the end of the cell and
// is visible to the next one. Destructuring, multi-declarator and
// initializer-less declarations are left as they are.
func promoteDeclarations(src string) (string, error) {
	runes := []rune(src)
	bounds, err := splitTopLevel(runes)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, rng := range bounds {
		trimmed, tStart, tEnd := trimStmt(runes, rng)
		leading := string(runes[rng[0]:tStart])
		trailing := string(runes[tEnd:rng[1]])

		if rewritten, ok := rewriteVarDecl(trimmed); ok {
			out.WriteString(leading)
			out.WriteString(rewritten)
			out.WriteString(trailing)
			continue
		}

		if rewritten, ok := rewriteFuncDecl(trimmed); ok {
			out.WriteString(leading)
			out.WriteString(rewritten)
			out.WriteString(trailing)
			continue
		}

		if rewritten, ok := rewriteClassDecl(trimmed); ok {
			out.WriteString(leading)
			out.WriteString(rewritten)
			out.WriteString(trailing)
			continue
		}

		out.WriteString(string(runes[rng[0]:rng[1]]))
	}

	return out.String(), nil
}

func rewriteVarDecl(trimmed string) (string, bool) {
	m := reVarDecl.FindStringSubmatchIndex(trimmed)
	if m == nil {
		return "", false
	}

	name := trimmed[m[4]:m[5]]
	rest := trimmed[m[1]:]

	trailingTrimmed := strings.TrimRight(rest, " \t\r\n")
	hasSemi := strings.HasSuffix(trailingTrimmed, ";")
	expr := trailingTrimmed
	if hasSemi {
		expr = strings.TrimSuffix(expr, ";")
	}

	// A destructuring pattern was already excluded by the regex (it
	// requires a bare identifier); guard against multiple
	// comma-separated declarators on one statement, e.g.
	// `const a = 1, b = 2;` — spec.md §4.6 only documents the single
	// `name = expr` form, so leave anything wider untouched.
	if hasTopLevelComma(expr) {
		return "", false
	}

	var b strings.Builder
	b.WriteString("var ")
	b.WriteString(name)
	b.WriteString(" = (globalThis.")
	b.WriteString(name)
	b.WriteString(" = ")
	b.WriteString(expr)
	b.WriteString(");")

	return b.String(), true
}

func rewriteFuncDecl(trimmed string) (string, bool) {
	m := reFuncDecl.FindStringSubmatchIndex(trimmed)
	if m == nil {
		return "", false
	}

	var asyncKw string
	if m[2] >= 0 {
		asyncKw = strings.TrimSpace(trimmed[m[2]:m[3]])
	}

	name := trimmed[m[6]:m[7]]

	funcKwIdx := strings.Index(trimmed, "function")
	body := trimmed[funcKwIdx:]

	var b strings.Builder
	b.WriteString("globalThis.")
	b.WriteString(name)
	b.WriteString(" = ")
	if asyncKw != "" {
		b.WriteString(asyncKw)
		b.WriteString(" ")
	}
	b.WriteString(body)

	return b.String(), true
}

func rewriteClassDecl(trimmed string) (string, bool) {
	m := reClassDecl.FindStringSubmatchIndex(trimmed)
	if m == nil {
		return "", false
	}

	name := trimmed[m[2]:m[3]]
	classKwIdx := strings.Index(trimmed, "class")
	body := trimmed[classKwIdx:]

	var b strings.Builder
	b.WriteString("globalThis.")
	b.WriteString(name)
	b.WriteString(" = ")
	b.WriteString(body)

	return b.String(), true
}

// hasTopLevelComma reports whether s contains a comma outside of any
// grouping or literal — used to detect multi-declarator statements
// that Pass A deliberately leaves untouched.
func hasTopLevelComma(s string) bool {
	runes := []rune(s)
	spans, err := scan(runes)
	if err != nil {
		return true
	}

	isLiteral := literalMask(runes, spans)

	depth := 0
	for i, r := range runes {
		if isLiteral[i] {
			continue
		}
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				return true
			}
		}
	}

	return false
}
