package execctx

import (
	"github.com/dop251/goja"

	"github.com/nodebooks/kernel/internal/display"
	"github.com/nodebooks/kernel/internal/model"
)

// streamFunc is invoked for every console call once formatted, and for
// every async error echoed to stderr; execute.go supplies one bound to
// the current cell's output list plus the optional on_stream sink.
type streamFunc func(record model.OutputRecord)

// installConsole rebuilds the console facade on the global object,
// bound to emit, per spec.md §4.9: log/info/debug to stdout,
// warn/error to stderr, arguments sanitized then formatted with a
// trailing newline.
func (c *Context) installConsole(emit streamFunc) {
	console := c.vm.NewObject()

	bind := func(name string, streamName model.StreamName) {
		_ = console.Set(name, func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, a := range call.Arguments {
				args[i] = c.exportForConsole(a)
			}
			text := display.FormatConsoleArgs(args)
			emit(model.OutputRecord{
				Kind:       model.OutputStream,
				StreamName: streamName,
				Text:       text,
			})
			return goja.Undefined()
		})
	}

	bind("log", model.StreamStdout)
	bind("info", model.StreamStdout)
	bind("debug", model.StreamStdout)
	bind("warn", model.StreamStderr)
	bind("error", model.StreamStderr)

	_ = c.vm.Set("console", console)
}

// exportForConsole is Export() with two identity special cases: a
// goja.DynamicObject (process.env) has no hook for a custom inspect or
// toJSON, and the process object's own Export() would otherwise dump
// every facade method, so both are substituted with the sentinel map
// display.SanitizeArg recognizes (spec.md §4.9's "the process facade
// [is] replaced by [Sandboxed process], the env proxy by its masked
// string form") before display ever sees them.
func (c *Context) exportForConsole(v goja.Value) interface{} {
	if c.processObject != nil && v.SameAs(c.processObject) {
		return map[string]interface{}{display.ProcessSentinelKey: true}
	}
	if c.envObject != nil && v.SameAs(c.envObject) {
		return map[string]interface{}{display.EnvRedactedKey: c.env.Redacted()}
	}
	return v.Export()
}
