package workspace

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SanitizePackages trims package names, drops entries whose trimmed
// name is empty, and defaults an empty version constraint to "latest"
// (spec.md §4.1). When a non-"latest" constraint parses as a semver
// range it is rewritten to semver's canonical string form, so two
// constraints that are semantically identical but spelled differently
// (" ^1.2.0", ">=1.2.0 <2.0.0" vs ">=1.2.0,<2.0.0") collapse to the
// same Fingerprint entry and don't trigger a spurious reinstall; when
// it doesn't parse as a semver range (a dist-tag, a git url, a file:
// path) it is kept verbatim, since npm accepts specifiers
// Masterminds/semver was never meant to understand.
func SanitizePackages(declared map[string]string) map[string]string {
	sanitized := make(map[string]string, len(declared))

	for name, version := range declared {
		trimmedName := strings.TrimSpace(name)
		if trimmedName == "" {
			continue
		}

		trimmedVersion := strings.TrimSpace(version)
		if trimmedVersion == "" {
			trimmedVersion = "latest"
		} else if constraint, err := semver.NewConstraint(trimmedVersion); err == nil {
			trimmedVersion = constraint.String()
		}

		sanitized[trimmedName] = trimmedVersion
	}

	return sanitized
}

// Fingerprint computes the canonical install-fingerprint string for a
// sanitized package set (spec.md §6): a JSON array of [name, version]
// pairs, sorted lexicographically by name.
func Fingerprint(packages map[string]string) string {
	names := make([]string, 0, len(packages))
	for name := range packages {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteByte('[')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		b.WriteString(jsonQuote(name))
		b.WriteByte(',')
		b.WriteString(jsonQuote(packages[name]))
		b.WriteByte(']')
	}
	b.WriteByte(']')

	return b.String()
}

func jsonQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
