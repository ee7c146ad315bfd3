// Package cfg holds the Kernel process's global configuration, parsed
// from the environment the same way the rest of the stack does.
package cfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultKernelTimeoutMs is used when KERNEL_TIMEOUT_MS is unset.
	DefaultKernelTimeoutMs = 30_000

	// MinKernelTimeoutMs and MaxKernelTimeoutMs bound cell.metadata.timeoutMs
	// and the global default per spec.md §6.
	MinKernelTimeoutMs = 1_000
	MaxKernelTimeoutMs = 600_000

	// DefaultInstallTimeoutMs bounds how long the Dependency Installer may run.
	DefaultInstallTimeoutMs = 120_000
)

// Config is the Kernel process's global configuration.
type Config struct {
	// WorkspaceRoot is the directory under which every notebook gets its
	// own sandbox subdirectory. Defaults to a subdirectory of the system
	// temporary directory.
	WorkspaceRoot string `env:"KERNEL_WORKSPACE_ROOT"`

	// KernelTimeoutMs is the default hard deadline for a cell execution
	// when the cell itself doesn't set metadata.timeoutMs.
	KernelTimeoutMs int `env:"KERNEL_TIMEOUT_MS"`

	// InstallTimeoutMs bounds the Dependency Installer subprocess.
	InstallTimeoutMs int `env:"KERNEL_INSTALL_TIMEOUT_MS"`
}

// Parse reads Config from the environment and fills in defaults,
// mirroring the teacher's env.Parse-then-backfill pattern.
func Parse() (Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return config, fmt.Errorf("parsing kernel config: %w", err)
	}

	if config.WorkspaceRoot == "" {
		config.WorkspaceRoot = filepath.Join(os.TempDir(), "nodebooks-kernel")
	}

	if config.KernelTimeoutMs == 0 {
		config.KernelTimeoutMs = DefaultKernelTimeoutMs
	}

	if config.InstallTimeoutMs == 0 {
		config.InstallTimeoutMs = DefaultInstallTimeoutMs
	}

	return config, config.Validate()
}

// Validate enforces the 1s-10m bound on the kernel timeout from spec.md §6.
func (c Config) Validate() error {
	if c.KernelTimeoutMs < MinKernelTimeoutMs || c.KernelTimeoutMs > MaxKernelTimeoutMs {
		return fmt.Errorf("kernel_timeout_ms %d out of bounds [%d, %d]", c.KernelTimeoutMs, MinKernelTimeoutMs, MaxKernelTimeoutMs)
	}

	return nil
}
