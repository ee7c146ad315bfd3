package execctx

import (
	"context"
	"time"

	"github.com/dop251/goja"

	"github.com/nodebooks/kernel/internal/kernelerr"
	"github.com/nodebooks/kernel/internal/model"
)

// InvokeHandler runs a previously registered UI handler callback
// (spec.md §4.10): looked up by its opaque id, called with event,
// with the same console/display bindings and timer draining an
// ordinary cell gets, but no source to transform or compile — the
// callable already exists in the runtime from the cell that
// registered it.
func (c *Context) InvokeHandler(ctx context.Context, handlerID string, event any, timeout time.Duration, onStream, onDisplay func(model.OutputRecord)) model.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	started := time.Now()
	var outputs []model.OutputRecord

	appendStream := func(rec model.OutputRecord) {
		outputs = append(outputs, rec)
		if onStream != nil {
			onStream(rec)
		}
	}
	appendDisplay := func(rec model.OutputRecord) {
		outputs = append(outputs, rec)
		if onDisplay != nil {
			onDisplay(rec)
		}
	}

	fn, ok := c.LookupHandler(handlerID)
	if !ok {
		return c.finish(started, outputs, errorResult(
			"HandlerNotFoundError", (&kernelerr.HandlerNotFoundError{HandlerID: handlerID}).Error(), nil))
	}

	// Rebinding the sinks (rather than reusing whatever was bound by
	// the cell that registered the handler) means console.log/display
	// calls made from inside the handler route to this invocation's
	// caller, not the long-gone cell run that created it.
	c.BindCellSinksKeepingHandlers(appendStream, appendDisplay)
	defer c.UnbindCellSinks()

	coordinator := c.NewCoordinator(func(name, message string) {
		appendStream(streamStderrRecord(name + ": " + message + "\n"))
	})
	c.installTimers(coordinator)

	deadline := started.Add(timeout)
	runCtx, cancelWatchdog := context.WithCancel(ctx)
	defer cancelWatchdog()
	go func() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		select {
		case <-runCtx.Done():
		case <-timer.C:
			c.vm.Interrupt(hardTimeoutMarker)
		}
	}()

	_, err := fn(goja.Undefined(), c.vm.ToValue(event))
	if err != nil {
		name, message, traceback := decomposeRunError(err)
		return c.finish(started, outputs, errorResult(name, message, traceback))
	}

	if _, ok := coordinator.Drain(runCtx, deadline, func() bool { return true }); !ok {
		coordinator.ClearAll()
		return c.finish(started, outputs, c.timeLimitResult(appendDisplay))
	}

	if asyncErrs := coordinator.AsyncErrors(); len(asyncErrs) > 0 {
		first := asyncErrs[0]
		return c.finish(started, outputs, errorResult(first.Name, first.Message, first.Traceback))
	}

	return c.finish(started, outputs, model.ExecutionRecord{Status: model.StatusOK})
}
