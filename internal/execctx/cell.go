package execctx

import (
	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/nodebooks/kernel/internal/display"
	"github.com/nodebooks/kernel/internal/model"
)

func streamStdoutRecord(text string) model.OutputRecord {
	return model.OutputRecord{Kind: model.OutputStream, StreamName: model.StreamStdout, Text: text}
}

func streamStderrRecord(text string) model.OutputRecord {
	return model.OutputRecord{Kind: model.OutputStream, StreamName: model.StreamStderr, Text: text}
}

// emitStream forwards a record to whatever sink the current cell bound
// via BindCellSinks; a nil sink (before the first BindCellSinks call)
// discards quietly, matching a freshly bootstrapped Context that has
// no cell running yet.
func (c *Context) emitStream(rec model.OutputRecord) {
	if c.currentEmit != nil {
		c.currentEmit(rec)
	}
}

// BindCellSinks installs the console facade, the `__display` /
// `__update_display` hooks, and clears the handler registry for a new
// cell run, per spec.md §4.7 ("installed on the context ... for the
// duration of a cell; removed on finally"). The registry is cleared
// on every cell run, whichever cell it is, so a handler lasts until
// the next cell executes in this context or the context is reset;
// handlers are not tracked per owning cell. onStream and
// onDisplay receive every record as it's produced, in production
// order; execute.go additionally appends each to the cell's ordered
// output list.
func (c *Context) BindCellSinks(onStream func(model.OutputRecord), onDisplay func(model.OutputRecord)) {
	c.handlers.clear()
	c.bindSinks(onStream, onDisplay)
}

// BindCellSinksKeepingHandlers is BindCellSinks without clearing the
// handler registry first, used by InvokeHandler: registered handlers
// survive interaction dispatches and are dropped only by the next
// BindCellSinks (any cell run) or by Reset.
func (c *Context) BindCellSinksKeepingHandlers(onStream func(model.OutputRecord), onDisplay func(model.OutputRecord)) {
	c.bindSinks(onStream, onDisplay)
}

func (c *Context) bindSinks(onStream func(model.OutputRecord), onDisplay func(model.OutputRecord)) {
	emit := streamFunc(func(rec model.OutputRecord) {
		if onStream != nil {
			onStream(rec)
		}
	})
	c.currentEmit = emit
	c.installConsole(emit)

	displayHook := func(v goja.Value, update bool, displayID string) goja.Value {
		if displayID == "" {
			displayID = uuid.NewString()
		}
		exported := v.Export()
		_, isCallable := goja.AssertFunction(v)
		rec, ok := display.StreamedDisplay(exported, goja.IsUndefined(v), isCallable, update, displayID)
		if !ok {
			return c.vm.ToValue(displayID)
		}
		if onDisplay != nil {
			onDisplay(rec)
		}
		return c.vm.ToValue(displayID)
	}

	_ = c.vm.Set("__display", func(call goja.FunctionCall) goja.Value {
		var v goja.Value = goja.Undefined()
		if len(call.Arguments) > 0 {
			v = call.Arguments[0]
		}
		return displayHook(v, false, "")
	})
	_ = c.vm.Set("__update_display", func(call goja.FunctionCall) goja.Value {
		var id string
		var v goja.Value = goja.Undefined()
		if len(call.Arguments) > 0 {
			id = call.Arguments[0].String()
		}
		if len(call.Arguments) > 1 {
			v = call.Arguments[1]
		}
		return displayHook(v, true, id)
	})
}

// UnbindCellSinks tears down the per-cell hooks (spec.md §4.7 "removed
// on finally"); the console facade is left bound to a discarding sink
// rather than deleted outright, since code that escaped into a timer
// callback scheduled from a prior cell may still reference it.
func (c *Context) UnbindCellSinks() {
	c.currentEmit = nil
	c.installConsole(func(model.OutputRecord) {})
	_ = c.vm.GlobalObject().Delete("__display")
	_ = c.vm.GlobalObject().Delete("__update_display")
}
