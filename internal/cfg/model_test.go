package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	result, err := Parse()
	require.NoError(t, err)
	assert.NotEmpty(t, result.WorkspaceRoot)
	assert.Equal(t, DefaultKernelTimeoutMs, result.KernelTimeoutMs)
	assert.Equal(t, DefaultInstallTimeoutMs, result.InstallTimeoutMs)
}

func TestParseHonorsEnv(t *testing.T) {
	t.Setenv("KERNEL_WORKSPACE_ROOT", "/tmp/custom-root")
	t.Setenv("KERNEL_TIMEOUT_MS", "5000")

	result, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-root", result.WorkspaceRoot)
	assert.Equal(t, 5000, result.KernelTimeoutMs)
}

func TestValidateRejectsOutOfBoundsTimeout(t *testing.T) {
	t.Setenv("KERNEL_TIMEOUT_MS", "500")
	_, err := Parse()
	assert.ErrorContains(t, err, "out of bounds")

	t.Setenv("KERNEL_TIMEOUT_MS", "700000")
	_, err = Parse()
	assert.ErrorContains(t, err, "out of bounds")
}
