package display

import (
	"reflect"
	"strings"
)

// Sentinel keys the Execution Context stamps onto the objects it
// installs (the shared global, the Process Facade, the env proxy) so
// the console sanitizer can recognize and mask them without depending
// on internal/execctx or internal/policy directly (spec.md §4.9:
// "the global context is replaced by [NotebookGlobal], the process
// facade by [Sandboxed process], the env proxy by its masked string
// form").
const (
	GlobalSentinelKey  = "__nodebooksGlobal"
	ProcessSentinelKey = "__nodebooksProcess"
	// EnvRedactedKey holds the env proxy's precomputed redacted
	// string (policy.EnvView.Redacted()), stamped on by execctx so
	// this package never needs to depend on internal/policy.
	EnvRedactedKey = "__nodebooksEnvRedacted"
)

// SanitizeArg clones v recursively, replacing any sentinel-bearing
// object with its masked placeholder and detecting (and preserving)
// cycles in the clone, per spec.md §4.9.
func SanitizeArg(v interface{}) interface{} {
	return cloneSanitized(v, map[uintptr]interface{}{})
}

func cloneSanitized(v interface{}, seen map[uintptr]interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if _, ok := t[GlobalSentinelKey]; ok {
			return "[NotebookGlobal]"
		}
		if _, ok := t[ProcessSentinelKey]; ok {
			return "[Sandboxed process]"
		}
		if redacted, ok := t[EnvRedactedKey].(string); ok {
			return redacted
		}

		ptr := reflect.ValueOf(t).Pointer()
		if c, ok := seen[ptr]; ok {
			return c
		}
		clone := make(map[string]interface{}, len(t))
		seen[ptr] = clone
		for k, val := range t {
			clone[k] = cloneSanitized(val, seen)
		}
		return clone

	case []interface{}:
		ptr := reflect.ValueOf(t).Pointer()
		if c, ok := seen[ptr]; ok {
			return c
		}
		clone := make([]interface{}, len(t))
		seen[ptr] = clone
		for i, val := range t {
			clone[i] = cloneSanitized(val, seen)
		}
		return clone

	default:
		return v
	}
}

// FormatConsoleArgs sanitizes and formats a console call's arguments
// the way the console facade does (spec.md §4.9): each argument is
// sanitized, a bare string prints unquoted (matching Node's
// console.log("hi") -> "hi" not "\"hi\""), everything else is
// inspected at depth 4, and a trailing newline is appended.
func FormatConsoleArgs(args []interface{}) string {
	parts := make([]string, len(args))
	for i, a := range args {
		sanitized := SanitizeArg(a)
		if s, ok := sanitized.(string); ok {
			parts[i] = s
		} else {
			parts[i] = Inspect(sanitized, 4, false)
		}
	}
	return strings.Join(parts, " ") + "\n"
}
