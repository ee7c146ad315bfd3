package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodebooks/kernel/internal/kernelerr"
)

func TestResolvePathAllowsRootAndChildren(t *testing.T) {
	root := "/sandbox/n1"

	resolved, err := ResolvePath(root, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "/sandbox/n1/notes.txt", resolved)

	resolved, err = ResolvePath(root, root)
	require.NoError(t, err)
	assert.Equal(t, root, resolved)
}

func TestResolvePathRejectsEscape(t *testing.T) {
	_, err := ResolvePath("/sandbox/n1", "../n2/secret.txt")
	require.Error(t, err)
	var policyErr *kernelerr.PolicyError
	require.ErrorAs(t, err, &policyErr)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestResolvePathRejectsSiblingWithSamePrefix(t *testing.T) {
	// "/sandbox/n12" is not contained by "/sandbox/n1" even though it
	// shares a string prefix; ResolvePath must check for the
	// separator, not just a raw string prefix.
	_, err := ResolvePath("/sandbox/n1", "/sandbox/n12/notes.txt")
	require.Error(t, err)
}

func TestNormalizePathArgHandlesFileURL(t *testing.T) {
	got, ok := NormalizePathArg("file:///sandbox/n1/notes.txt")
	require.True(t, ok)
	assert.Equal(t, "/sandbox/n1/notes.txt", got)
}

func TestNormalizePathArgHandlesBuffer(t *testing.T) {
	got, ok := NormalizePathArg([]byte("notes.txt"))
	require.True(t, ok)
	assert.Equal(t, "notes.txt", got)
}
