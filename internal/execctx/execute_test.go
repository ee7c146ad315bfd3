package execctx

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodebooks/kernel/internal/model"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	dir, err := os.MkdirTemp("", "nodebooks-kernel-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return New("nb-test", dir, map[string]string{"API_KEY": "secret"})
}

func runCell(t *testing.T, c *Context, source string, lang model.Language) model.Result {
	t.Helper()
	cell := model.Cell{ID: "cell-1", Language: lang, Source: source}
	var streams []model.OutputRecord
	var displays []model.OutputRecord
	result := c.Execute(context.Background(), cell, 2*time.Second,
		func(r model.OutputRecord) { streams = append(streams, r) },
		func(r model.OutputRecord) { displays = append(displays, r) },
	)
	assert.Equal(t, len(streams)+len(displays), len(result.Outputs), "on_stream/on_display sinks must see exactly the records in the final output list")
	return result
}

func TestExecuteCapturesLastExpressionAsDisplay(t *testing.T) {
	c := newTestContext(t)
	result := runCell(t, c, "let x = 40;\nx + 2;", model.LanguageJS)

	require.Equal(t, model.StatusOK, result.Execution.Status)
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, model.OutputDisplay, result.Outputs[0].Kind)
}

func TestExecutePersistsTopLevelDeclarationsAcrossCells(t *testing.T) {
	c := newTestContext(t)
	first := runCell(t, c, "let counter = 41;", model.LanguageJS)
	require.Equal(t, model.StatusOK, first.Execution.Status)

	second := runCell(t, c, "counter + 1;", model.LanguageJS)
	require.Equal(t, model.StatusOK, second.Execution.Status)
	require.Len(t, second.Outputs, 1)
	payload := second.Outputs[0].Data["application/vnd.nodebooks.ui+json"].(map[string]any)
	assert.Equal(t, float64(42), payload["json"])
}

func TestExecuteConsoleLogStreamsBeforeDisplay(t *testing.T) {
	c := newTestContext(t)
	result := runCell(t, c, "console.log('hello'); 1 + 1;", model.LanguageJS)

	require.Equal(t, model.StatusOK, result.Execution.Status)
	require.Len(t, result.Outputs, 2)
	assert.Equal(t, model.OutputStream, result.Outputs[0].Kind)
	assert.Equal(t, "hello\n", result.Outputs[0].Text)
	assert.Equal(t, model.OutputDisplay, result.Outputs[1].Kind)
}

func TestExecutePolicyErrorIsCatchableWithMessage(t *testing.T) {
	c := newTestContext(t)
	source := `
let msg = '';
try {
  require('fs').writeFileSync('/etc/hosts', 'nope');
} catch (e) {
  msg = e.message;
}
msg;
`
	result := runCell(t, c, source, model.LanguageJS)

	require.Equal(t, model.StatusOK, result.Execution.Status)
	require.Len(t, result.Outputs, 1)
	payload := result.Outputs[0].Data["application/vnd.nodebooks.ui+json"].(map[string]any)
	assert.Contains(t, payload["json"], "not allowed")
}

func TestExecuteDeniedChildProcessModule(t *testing.T) {
	c := newTestContext(t)
	source := `
let msg = '';
try {
  require('child_process');
} catch (e) {
  msg = e.message;
}
msg;
`
	result := runCell(t, c, source, model.LanguageJS)
	require.Equal(t, model.StatusOK, result.Execution.Status)
	payload := result.Outputs[0].Data["application/vnd.nodebooks.ui+json"].(map[string]any)
	assert.Contains(t, payload["json"], "not permitted")
}

func TestExecuteTimerCallbackRunsBeforeCompletion(t *testing.T) {
	c := newTestContext(t)
	source := `
let order = [];
setTimeout(() => { order.push('timer'); }, 10);
order.push('sync');
order;
`
	result := runCell(t, c, source, model.LanguageJS)
	require.Equal(t, model.StatusOK, result.Execution.Status)
	payload := result.Outputs[0].Data["application/vnd.nodebooks.ui+json"].(map[string]any)
	arr, ok := payload["json"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"sync", "timer"}, arr)
}

func TestExecuteAsyncErrorBecomesExecutionError(t *testing.T) {
	c := newTestContext(t)
	source := `setTimeout(() => { throw new Error('boom'); }, 5);`
	result := runCell(t, c, source, model.LanguageJS)

	require.Equal(t, model.StatusError, result.Execution.Status)
	require.NotNil(t, result.Execution.Error)
	assert.Equal(t, "boom", result.Execution.Error.ErrorMessage)

	// The async error is also echoed to stderr as a stream record.
	var sawStderr bool
	for _, o := range result.Outputs {
		if o.Kind == model.OutputStream && o.StreamName == model.StreamStderr {
			sawStderr = true
		}
	}
	assert.True(t, sawStderr)
}

func TestExecuteAwaitsTopLevelPromise(t *testing.T) {
	c := newTestContext(t)
	source := `
function wait(ms) {
  return new Promise((resolve) => setTimeout(resolve, ms));
}
await wait(5);
42;
`
	result := runCell(t, c, source, model.LanguageJS)
	require.Equal(t, model.StatusOK, result.Execution.Status)
	payload := result.Outputs[0].Data["application/vnd.nodebooks.ui+json"].(map[string]any)
	assert.Equal(t, float64(42), payload["json"])
}

func TestExecuteCompileErrorNeverRunsCode(t *testing.T) {
	c := newTestContext(t)
	result := runCell(t, c, "this is not valid javascript {{{", model.LanguageJS)

	assert.Equal(t, model.StatusError, result.Execution.Status)
	require.NotNil(t, result.Execution.Error)
	assert.Equal(t, "CompileError", result.Execution.Error.ErrorName)
}

func TestExecuteProcessEnvNeverLeaksRawValuesWhenLogged(t *testing.T) {
	c := newTestContext(t)
	result := runCell(t, c, "console.log(process.env); console.log(process);", model.LanguageJS)

	require.Equal(t, model.StatusOK, result.Execution.Status)
	for _, o := range result.Outputs {
		if o.Kind == model.OutputStream {
			assert.NotContains(t, o.Text, "secret")
		}
	}
}
