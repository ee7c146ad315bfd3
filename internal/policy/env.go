package policy

import (
	"fmt"
	"sort"
	"strings"
)

// EnvView is the Process Facade's live view over a notebook's
// environment mapping (spec.md §4.5): reads/writes to named keys
// succeed, key enumeration returns the current key set, and any
// custom-inspect or JSON coercion of the view itself yields a
// redacted representation rather than the raw values.
type EnvView struct {
	vars map[string]string
}

// NewEnvView wraps vars; mutations made through the returned view are
// visible to the caller's original map (same backing store), matching
// the "live view" language in spec.md §4.5.
func NewEnvView(vars map[string]string) *EnvView {
	if vars == nil {
		vars = map[string]string{}
	}
	return &EnvView{vars: vars}
}

// Get returns the value and whether the key is present.
func (e *EnvView) Get(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Set assigns key's value.
func (e *EnvView) Set(key, value string) {
	e.vars[key] = value
}

// Delete removes key.
func (e *EnvView) Delete(key string) {
	delete(e.vars, key)
}

// Keys returns the current key set in sorted order, for deterministic
// enumeration.
func (e *EnvView) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Redacted renders the stable, sorted "NotebookEnv" dump spec.md §4.5
// requires in place of the raw values whenever the env view (or the
// process object carrying it) is inspected, logged, or JSON-encoded.
func (e *EnvView) Redacted() string {
	keys := e.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: <redacted>", k))
	}
	return fmt.Sprintf("NotebookEnv { %s }", strings.Join(parts, ", "))
}

// ProcessSummary is the fixed string the Process Facade itself yields
// when inspected or converted to a string (spec.md §4.5).
const ProcessSummary = "[Sandboxed process]"
