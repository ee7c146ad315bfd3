package transform

// continuationStarters are the characters spec.md §4.6 lists as
// "the next non-blank character... begins a continuation", meaning a
// newline at zero grouping depth does NOT end the statement.
var continuationStarters = map[rune]bool{
	'.': true, '[': true, '(': true,
	'+': true, '-': true, '*': true, '/': true, '%': true,
	'=': true, '<': true, '>': true, '&': true, '|': true, '^': true,
	'?': true, ':': true, ',': true,
}

// splitTopLevel partitions src into consecutive top-level statement
// ranges per spec.md §4.6: a statement ends at the first semicolon at
// zero grouping depth, right after a `}` that brings the depth back to
// zero, or at a newline where all grouping depths (combined count of
// "([{" pushes) are zero and the next non-blank character doesn't
// begin a continuation.
func splitTopLevel(src []rune) ([][2]int, error) {
	spans, err := scan(src)
	if err != nil {
		return nil, err
	}

	isLiteral := make([]bool, len(src)+1)
	for _, s := range spans {
		if s.kind == spanLiteral {
			for i := s.start; i < s.end; i++ {
				isLiteral[i] = true
			}
		}
	}

	var bounds [][2]int
	start := 0
	depth := 0
	n := len(src)

	for i := 0; i < n; i++ {
		if isLiteral[i] {
			continue
		}

		switch src[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 && src[i] == '}' {
				// A top-level block (function/class body, if/for/...)
				// just closed; treat this as a statement boundary so
				// Pass A/B can re-examine what follows as a fresh
				// top-level statement even with no trailing semicolon.
				if end := i + 1; end > start {
					bounds = append(bounds, [2]int{start, end})
					start = end
				}
			}
		case ';':
			if depth == 0 {
				end := i + 1
				bounds = append(bounds, [2]int{start, end})
				start = end
			}
		case '\n':
			if depth == 0 && start < i {
				j := i + 1
				for j < n && (src[j] == ' ' || src[j] == '\t' || src[j] == '\r') {
					j++
				}
				if j >= n || !continuationStarters[src[j]] {
					end := i + 1
					bounds = append(bounds, [2]int{start, end})
					start = end
				}
			}
		}
	}

	if start < n {
		bounds = append(bounds, [2]int{start, n})
	}

	return bounds, nil
}

// trimStmt returns the statement text with surrounding whitespace
// trimmed, and the offsets of the trimmed range within src.
func trimStmt(src []rune, rng [2]int) (text string, start, end int) {
	s, e := rng[0], rng[1]
	for s < e && isSpace(src[s]) {
		s++
	}
	for e > s && isSpace(src[e-1]) {
		e--
	}
	return string(src[s:e]), s, e
}
