package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInstaller struct {
	calls   int
	fail    bool
	lastDir string
	lastPkg map[string]string
}

func (f *fakeInstaller) Install(_ context.Context, dir string, packages map[string]string) error {
	f.calls++
	f.lastDir = dir
	f.lastPkg = packages

	if f.fail {
		return assertError("boom")
	}

	return os.MkdirAll(filepath.Join(dir, nodeModulesDirName), 0o755)
}

type installErr string

func (e installErr) Error() string { return string(e) }

func assertError(msg string) error { return installErr(msg) }

func TestEnsureCreatesSandboxAndInstallsOnce(t *testing.T) {
	root := t.TempDir()
	installer := &fakeInstaller{}
	m := New(root, installer)

	handle, err := m.Ensure(context.Background(), "nb-1", map[string]string{" lodash ": ""})
	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)
	assert.Equal(t, map[string]string{"lodash": "latest"}, installer.lastPkg)
	assert.FileExists(t, handle.PackageJSONPath)
	assert.FileExists(t, handle.EntryFile)
	assert.DirExists(t, filepath.Join(handle.Dir, nodeModulesDirName, injectedPackageName))

	// Re-running with the same declared packages must not reinstall.
	_, err = m.Ensure(context.Background(), "nb-1", map[string]string{" lodash ": ""})
	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)
}

func TestEnsureReinstallsOnFingerprintChange(t *testing.T) {
	root := t.TempDir()
	installer := &fakeInstaller{}
	m := New(root, installer)

	_, err := m.Ensure(context.Background(), "nb-1", map[string]string{"lodash": "4.17.21"})
	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)

	_, err = m.Ensure(context.Background(), "nb-1", map[string]string{"lodash": "4.17.21", "dayjs": "1.11.0"})
	require.NoError(t, err)
	assert.Equal(t, 2, installer.calls)
}

func TestEnsureEmptyDeclaredPackagesRemovesModuleTree(t *testing.T) {
	root := t.TempDir()
	installer := &fakeInstaller{}
	m := New(root, installer)

	handle, err := m.Ensure(context.Background(), "nb-1", map[string]string{"lodash": "4.17.21"})
	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls)
	installedDir := filepath.Join(handle.Dir, nodeModulesDirName, "lodash")
	require.NoError(t, os.MkdirAll(installedDir, 0o755))

	handle, err = m.Ensure(context.Background(), "nb-1", map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 1, installer.calls, "no install should happen for an empty declared set")
	assert.NoDirExists(t, installedDir, "previously installed modules are removed")
	assert.DirExists(t, filepath.Join(handle.Dir, nodeModulesDirName, injectedPackageName), "the injected ui package is always rewritten")
}

func TestEnsureLeavesFingerprintUnchangedOnInstallFailure(t *testing.T) {
	root := t.TempDir()
	installer := &fakeInstaller{fail: true}
	m := New(root, installer)

	_, err := m.Ensure(context.Background(), "nb-1", map[string]string{"lodash": "4.17.21"})
	require.Error(t, err)

	fpPath := filepath.Join(root, "nb-1", fingerprintFileName)
	_, statErr := os.Stat(fpPath)
	assert.Error(t, statErr, "fingerprint file must not be written on install failure")
}
