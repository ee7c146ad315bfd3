package interaction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodebooks/kernel/internal/execctx"
	"github.com/nodebooks/kernel/internal/model"
)

func TestInvokeReturnsHandlerNotFoundForUnknownNotebook(t *testing.T) {
	d := New(func(string) (*execctx.Context, bool) { return nil, false })

	result := d.Invoke(context.Background(), model.InteractionEvent{
		NotebookID: "missing-notebook",
		HandlerID:  "h1",
	}, time.Second, nil, nil)

	require.Equal(t, model.StatusError, result.Execution.Status)
	require.NotNil(t, result.Execution.Error)
	assert.Equal(t, "HandlerNotFoundError", result.Execution.Error.ErrorName)
}

func TestInvokeDelegatesToTheResolvedContext(t *testing.T) {
	ec := execctx.New("nb1", t.TempDir(), nil)
	d := New(func(notebookID string) (*execctx.Context, bool) {
		if notebookID == "nb1" {
			return ec, true
		}
		return nil, false
	})

	result := d.Invoke(context.Background(), model.InteractionEvent{
		NotebookID: "nb1",
		HandlerID:  "never-registered",
	}, time.Second, nil, nil)

	require.Equal(t, model.StatusError, result.Execution.Status)
	assert.Equal(t, "HandlerNotFoundError", result.Execution.Error.ErrorName)
}
