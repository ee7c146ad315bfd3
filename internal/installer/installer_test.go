package installer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeNpm exercises the real exec.CommandContext path with a
// stand-in script so the test doesn't depend on an actual npm/registry.
func writeFakeNpm(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fake-npm.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestInstallSkipsWhenNoPackagesDeclared(t *testing.T) {
	n := &NPM{BinaryPath: writeFakeNpm(t, "echo should-not-run >&2; exit 1\n")}
	err := n.Install(context.Background(), t.TempDir(), nil)
	assert.NoError(t, err)
}

func TestInstallSurfacesStderrOnFailure(t *testing.T) {
	n := &NPM{BinaryPath: writeFakeNpm(t, "echo npm ERR! network timeout >&2; exit 1\n")}
	err := n.Install(context.Background(), t.TempDir(), map[string]string{"lodash": "latest"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network timeout")
}

func TestInstallSucceeds(t *testing.T) {
	n := &NPM{BinaryPath: writeFakeNpm(t, "exit 0\n")}
	err := n.Install(context.Background(), t.TempDir(), map[string]string{"lodash": "latest"})
	assert.NoError(t, err)
}
