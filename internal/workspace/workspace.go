// Package workspace implements the Workspace Manager (spec.md §4.1):
// it owns the per-notebook sandbox directory tree, writes the package
// manifest, and decides when the Dependency Installer needs to run by
// comparing install fingerprints.
//
// The CRUD-with-a-serializing-mutex shape here is adapted from the
// teacher's internal/sandbox/store.go Store type (Add/Get/Remove
// wrapping a backend, logging every mutation through the shared
// logger) — generalized from a team-scoped sandbox registry to a
// single-mutex-guarded directory-fingerprint registry, since spec.md
// §5 requires `ensure` to be serialized across the whole kernel rather
// than per notebook.
package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/nodebooks/kernel/internal/kernelerr"
	"github.com/nodebooks/kernel/pkg/kernellog"
)

const (
	entryFileName       = "__runtime__.cjs"
	packageJSONName     = "package.json"
	lockfileName        = "package-lock.json"
	fingerprintFileName = ".install-fingerprint"
	nodeModulesDirName  = "node_modules"
	injectedPackageName = "@nodebooks/ui"
)

// Installer materializes a resolvable module tree for a sandbox
// directory (spec.md §4.2). Implemented by internal/installer's
// default npm-backed installer, and overridable in tests.
type Installer interface {
	Install(ctx context.Context, sandboxDir string, packages map[string]string) error
}

// SandboxHandle is the result of Ensure: everything a caller needs to
// know about a ready-to-run sandbox directory.
type SandboxHandle struct {
	NotebookID      string
	Dir             string
	EntryFile       string
	PackageJSONPath string
}

type fingerprintFile struct {
	PackagesKey string `json:"packagesKey"`
}

// Manager owns the sandbox directory tree for every notebook.
type Manager struct {
	root      string
	installer Installer

	// mu serializes Ensure process-wide: spec.md §5 states environment
	// preparation (WM.ensure + DI.install) is "serialized per kernel",
	// not per notebook.
	mu sync.Mutex
}

// New builds a Manager rooted at root, using installer as the
// Dependency Installer.
func New(root string, installer Installer) *Manager {
	return &Manager{root: root, installer: installer}
}

// Ensure creates (or updates) the sandbox directory for notebookID so
// that its module tree matches declaredPackages, per spec.md §4.1.
func (m *Manager) Ensure(ctx context.Context, notebookID string, declaredPackages map[string]string) (SandboxHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Join(m.root, notebookID)
	handle := SandboxHandle{
		NotebookID:      notebookID,
		Dir:             dir,
		EntryFile:       filepath.Join(dir, entryFileName),
		PackageJSONPath: filepath.Join(dir, packageJSONName),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return handle, fmt.Errorf("creating sandbox directory: %w", err)
	}

	sanitized := SanitizePackages(declaredPackages)

	if err := writePackageJSON(handle.PackageJSONPath, sanitized); err != nil {
		return handle, fmt.Errorf("writing package.json: %w", err)
	}

	if err := ensureEntryFile(handle.EntryFile); err != nil {
		return handle, fmt.Errorf("creating entry module: %w", err)
	}

	fingerprintPath := filepath.Join(dir, fingerprintFileName)
	prior, _ := readFingerprint(fingerprintPath) // a missing/corrupt file just forces reinstall

	want := Fingerprint(sanitized)
	modulesDir := filepath.Join(dir, nodeModulesDirName)

	switch {
	case len(sanitized) == 0:
		_ = os.RemoveAll(modulesDir)
		_ = os.Remove(filepath.Join(dir, lockfileName))
		if err := writeFingerprint(fingerprintPath, want); err != nil {
			return handle, fmt.Errorf("writing install fingerprint: %w", err)
		}

	case want != prior || !dirExists(modulesDir):
		kernellog.L().Info(ctx, "installing dependencies", kernellog.WithNotebookID(notebookID), zap.Int("package_count", len(sanitized)))

		if err := m.installer.Install(ctx, dir, sanitized); err != nil {
			kernellog.L().Error(ctx, "dependency install failed", kernellog.WithNotebookID(notebookID), zap.Error(err))
			return handle, &kernelerr.InstallError{Stderr: err.Error()}
		}

		if err := writeFingerprint(fingerprintPath, want); err != nil {
			return handle, fmt.Errorf("writing install fingerprint: %w", err)
		}
	}

	if err := writeInjectedUIPackage(modulesDir); err != nil {
		return handle, fmt.Errorf("writing injected ui package: %w", err)
	}

	return handle, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func ensureEntryFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte("// generated entry module\n"), 0o644)
}

func writePackageJSON(path string, packages map[string]string) error {
	doc := map[string]any{
		"name":         "notebook-sandbox",
		"private":      true,
		"version":      "0.0.0",
		"dependencies": packages,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func readFingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var fp fingerprintFile
	if err := json.Unmarshal(data, &fp); err != nil {
		return "", err
	}

	return fp.PackagesKey, nil
}

func writeFingerprint(path, key string) error {
	data, err := json.Marshal(fingerprintFile{PackagesKey: key})
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
