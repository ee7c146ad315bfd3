package kernel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nodebooks/kernel/internal/cfg"
)

func TestTimeoutForUsesCellOverrideWhenSet(t *testing.T) {
	k := New(cfg.Config{WorkspaceRoot: t.TempDir(), KernelTimeoutMs: 30_000, InstallTimeoutMs: 1_000})
	assert.Equal(t, 5*time.Second, k.timeoutFor(5_000))
}

func TestTimeoutForFallsBackToKernelDefault(t *testing.T) {
	k := New(cfg.Config{WorkspaceRoot: t.TempDir(), KernelTimeoutMs: 30_000, InstallTimeoutMs: 1_000})
	assert.Equal(t, 30*time.Second, k.timeoutFor(0))
}

func TestTimeoutForClampsBelowMinimum(t *testing.T) {
	k := New(cfg.Config{WorkspaceRoot: t.TempDir(), KernelTimeoutMs: 30_000, InstallTimeoutMs: 1_000})
	assert.Equal(t, cfg.MinKernelTimeoutMs, int(k.timeoutFor(1).Milliseconds()))
}

func TestTimeoutForClampsAboveMaximum(t *testing.T) {
	k := New(cfg.Config{WorkspaceRoot: t.TempDir(), KernelTimeoutMs: 30_000, InstallTimeoutMs: 1_000})
	assert.Equal(t, cfg.MaxKernelTimeoutMs, int(k.timeoutFor(10_000_000).Milliseconds()))
}

func TestInterruptOnUnknownNotebookIsANoOp(t *testing.T) {
	k := New(cfg.Config{WorkspaceRoot: t.TempDir(), KernelTimeoutMs: 30_000, InstallTimeoutMs: 1_000})
	k.Interrupt("never-ran", "cell-1")
}

func TestResetOnUnknownNotebookIsANoOp(t *testing.T) {
	k := New(cfg.Config{WorkspaceRoot: t.TempDir(), KernelTimeoutMs: 30_000, InstallTimeoutMs: 1_000})
	k.Reset("never-ran")
}
