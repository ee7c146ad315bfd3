package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvViewGetSetDelete(t *testing.T) {
	backing := map[string]string{"API_KEY": "secret"}
	view := NewEnvView(backing)

	v, ok := view.Get("API_KEY")
	assert.True(t, ok)
	assert.Equal(t, "secret", v)

	view.Set("NEW_VAR", "value")
	assert.Equal(t, "value", backing["NEW_VAR"])

	view.Delete("API_KEY")
	_, ok = view.Get("API_KEY")
	assert.False(t, ok)
}

func TestEnvViewRedactedNeverLeaksValues(t *testing.T) {
	view := NewEnvView(map[string]string{"API_KEY": "super-secret", "ZEBRA": "z"})
	redacted := view.Redacted()

	assert.Contains(t, redacted, "NotebookEnv")
	assert.Contains(t, redacted, "API_KEY: <redacted>")
	assert.NotContains(t, redacted, "super-secret")
}

func TestEnvViewKeysSorted(t *testing.T) {
	view := NewEnvView(map[string]string{"ZEBRA": "1", "ALPHA": "2"})
	assert.Equal(t, []string{"ALPHA", "ZEBRA"}, view.Keys())
}
