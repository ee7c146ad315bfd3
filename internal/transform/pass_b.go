package transform

import (
	"regexp"
	"strings"

	"github.com/nodebooks/kernel/internal/model"
)

// controlKeywords are the leading tokens spec.md §4.6 excludes from
// "last non-control statement" selection: control-flow and
// declaration keywords. Pass A rewrites function and class
// declarations into `globalThis.name = ...` assignments, but a
// promoted const/let/var declaration becomes `var name = (...)` and a
// multi-declarator statement Pass A deliberately skipped (see
// hasTopLevelComma) is left as it was; both still begin with one of
// these, so the check still matters after Pass A has run.
var controlKeywords = []string{
	"if", "for", "while", "switch", "try", "catch", "finally",
	"return", "throw", "break", "continue", "do",
	"const", "let", "var", "function", "class",
	"interface", "type", "import", "export",
}

// reGenericArrow flags the classic TS generic-arrow ambiguity: `<T>(`
// reads as either a type-parameterized arrow function or a
// less-than/greater-than comparison around a call, and goja (an
// ECMAScript engine) cannot disambiguate it either.
var reGenericArrow = regexp.MustCompile(`^<\s*[A-Za-z_$][\w$]*\s*(,\s*[A-Za-z_$][\w$]*\s*)*>\s*\(`)

var reBareOrDottedPath = regexp.MustCompile(`^[A-Za-z_$][\w$]*(\.[A-Za-z_$][\w$]*)*$`)

var reImportStmt = regexp.MustCompile(`^import\b`)

// wrapCapture implements Pass B (spec.md §4.6): it hoists top-level
// imports, then wraps the remaining body in an async IIFE so
// top-level await works, capturing the value of the last
// non-control statement when doing so is safe for the cell's
// language.
func wrapCapture(src string, lang model.Language) (string, error) {
	runes := []rune(src)
	bounds, err := splitTopLevel(runes)
	if err != nil {
		return "", err
	}

	var imports []string
	var body []string
	prevImport := false
	for _, rng := range bounds {
		raw := string(runes[rng[0]:rng[1]])
		trimmed, _, _ := trimStmt(runes, rng)
		if trimmed == "" {
			continue
		}
		if reImportStmt.MatchString(trimmed) {
			imports = append(imports, raw)
			prevImport = true
			continue
		}
		// splitTopLevel ends `import { a } from 'x'` at its closing
		// brace; keep the from clause with its import.
		if last := len(imports) - 1; prevImport && strings.HasSuffix(strings.TrimSpace(imports[last]), "}") && strings.HasPrefix(trimmed, "from") {
			imports[last] += raw
			prevImport = false
			continue
		}
		prevImport = false
		body = append(body, raw)
	}

	captureIdx := -1
	for i := len(body) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(body[i])
		if trimmed == "" || trimmed == ";" || startsWithControlKeyword(trimmed) {
			continue
		}
		captureIdx = i
		break
	}

	var out strings.Builder
	for _, imp := range imports {
		out.WriteString(imp)
		out.WriteString("\n")
	}

	out.WriteString("(async () => {\n")

	if captureIdx < 0 {
		for _, stmt := range body {
			out.WriteString(stmt)
			out.WriteString("\n")
		}
		out.WriteString("})()")
		return out.String(), nil
	}

	expr, exprOK := bareStatementExpr(body[captureIdx])

	switch lang {
	case model.LanguageTS:
		if !exprOK || !reBareOrDottedPath.MatchString(expr) {
			// TS variant: only identifier/dotted-path captures run;
			// anything else (notably call expressions) runs the body
			// uncaptured to avoid noisy function/promise displays.
			for _, stmt := range body {
				out.WriteString(stmt)
				out.WriteString("\n")
			}
			out.WriteString("})()")
			return out.String(), nil
		}
		writeCaptured(&out, body, captureIdx, expr)
		out.WriteString("return RESULT;\n})()")
		return out.String(), nil

	default: // model.LanguageJS
		if exprOK && !reGenericArrow.MatchString(expr) {
			writeCaptured(&out, body, captureIdx, expr)
			out.WriteString("return RESULT;\n})()")
			return out.String(), nil
		}
		// Ambiguous (or not a clean expression): fall back to a
		// trailing return with no mid-body replacement.
		for _, stmt := range body {
			out.WriteString(stmt)
			out.WriteString("\n")
		}
		fallbackExpr := expr
		if !exprOK {
			fallbackExpr = strings.TrimSuffix(strings.TrimSpace(body[captureIdx]), ";")
		}
		out.WriteString("return (")
		out.WriteString(fallbackExpr)
		out.WriteString(");\n})()")
		return out.String(), nil
	}
}

func writeCaptured(out *strings.Builder, body []string, captureIdx int, expr string) {
	out.WriteString("let RESULT;\n")
	for i, stmt := range body {
		if i == captureIdx {
			out.WriteString("RESULT = (")
			out.WriteString(expr)
			out.WriteString(");\n")
			continue
		}
		out.WriteString(stmt)
		out.WriteString("\n")
	}
}

func startsWithControlKeyword(stmt string) bool {
	for _, kw := range controlKeywords {
		if stmt == kw {
			return true
		}
		if strings.HasPrefix(stmt, kw) {
			rest := stmt[len(kw):]
			if rest == "" || isSpace(rune(rest[0])) || rest[0] == '(' || rest[0] == '{' {
				return true
			}
		}
	}
	return false
}

// bareStatementExpr strips a trailing semicolon from an expression
// statement and reports whether anything is left. It does not look for
// further semicolons: splitTopLevel already ends each statement at its
// first top-level semicolon.
func bareStatementExpr(stmt string) (string, bool) {
	trimmed := strings.TrimSpace(stmt)
	trimmed = strings.TrimSuffix(trimmed, ";")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}
