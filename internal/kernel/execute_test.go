package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodebooks/kernel/internal/cfg"
	"github.com/nodebooks/kernel/internal/model"
)

// TestKernelExecuteEndToEnd exercises Execute without any declared
// packages, so the Workspace Manager never shells out to npm (spec.md
// §4.1's "len(sanitized) == 0" removal branch) while still writing the
// injected @nodebooks/ui package and entry file to disk.
func TestKernelExecuteEndToEnd(t *testing.T) {
	k := New(cfg.Config{WorkspaceRoot: t.TempDir(), KernelTimeoutMs: 5_000, InstallTimeoutMs: 5_000})

	result, err := k.Execute(context.Background(), ExecuteRequest{
		NotebookID: "nb-e2e",
		Cell:       model.Cell{ID: "cell-1", Language: model.LanguageJS, Source: "1 + 1;"},
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusOK, result.Execution.Status)
	require.Len(t, result.Outputs, 1)

	payload := result.Outputs[0].Data["application/vnd.nodebooks.ui+json"].(map[string]any)
	assert.Equal(t, float64(2), payload["json"])
}

// TestKernelExecuteReusesContextAcrossCells confirms cross-cell
// declaration visibility survives a second Execute call against the
// same notebook id (spec.md §4.7).
func TestKernelExecuteReusesContextAcrossCells(t *testing.T) {
	k := New(cfg.Config{WorkspaceRoot: t.TempDir(), KernelTimeoutMs: 5_000, InstallTimeoutMs: 5_000})
	ctx := context.Background()

	_, err := k.Execute(ctx, ExecuteRequest{
		NotebookID: "nb-reuse",
		Cell:       model.Cell{ID: "cell-1", Language: model.LanguageJS, Source: "let shared = 10;"},
	})
	require.NoError(t, err)

	result, err := k.Execute(ctx, ExecuteRequest{
		NotebookID: "nb-reuse",
		Cell:       model.Cell{ID: "cell-2", Language: model.LanguageJS, Source: "shared + 5;"},
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusOK, result.Execution.Status)
	payload := result.Outputs[0].Data["application/vnd.nodebooks.ui+json"].(map[string]any)
	assert.Equal(t, float64(15), payload["json"])
}

// TestKernelResetDropsDeclarations confirms Reset clears cross-cell
// state, per SPEC_FULL's reset-semantics supplement.
func TestKernelResetDropsDeclarations(t *testing.T) {
	k := New(cfg.Config{WorkspaceRoot: t.TempDir(), KernelTimeoutMs: 5_000, InstallTimeoutMs: 5_000})
	ctx := context.Background()

	_, err := k.Execute(ctx, ExecuteRequest{
		NotebookID: "nb-reset",
		Cell:       model.Cell{ID: "cell-1", Language: model.LanguageJS, Source: "let shared = 10;"},
	})
	require.NoError(t, err)

	k.Reset("nb-reset")

	result, err := k.Execute(ctx, ExecuteRequest{
		NotebookID: "nb-reset",
		Cell:       model.Cell{ID: "cell-2", Language: model.LanguageJS, Source: "typeof shared;"},
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusOK, result.Execution.Status)
	payload := result.Outputs[0].Data["application/vnd.nodebooks.ui+json"].(map[string]any)
	assert.Equal(t, "undefined", payload["json"])
}
