package execctx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/nodebooks/kernel/internal/display"
	"github.com/nodebooks/kernel/internal/kernelerr"
	"github.com/nodebooks/kernel/internal/model"
	"github.com/nodebooks/kernel/internal/transform"
)

// hardTimeoutMarker is the value passed to vm.Interrupt when the hard
// deadline elapses while synchronous user code is still running (an
// infinite loop, say); Drain's own deadline parameter only bounds the
// post-evaluation timer-draining phase, not RunProgram itself, so a
// separate watchdog is what actually cuts off runaway synchronous code.
const hardTimeoutMarker = "notebook cell exceeded its execution time limit"

// Execute runs one cell to completion (spec.md §4.6–§4.9, §5): source
// transformation, compilation, evaluation, and staged timer draining,
// producing the ordered output list and execution record the Kernel
// returns to its caller. onStream and onDisplay, if non-nil, receive
// every record as it's produced in addition to the final ordered list.
func (c *Context) Execute(ctx context.Context, cell model.Cell, timeout time.Duration, onStream, onDisplay func(model.OutputRecord)) model.Result {
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

	c.BindCellSinks(appendStream, appendDisplay)
	defer c.UnbindCellSinks()

	transformed, err := transform.Transform(cell.Source, cell.Language)
	if err != nil {
		return c.finish(started, outputs, errorResult("CompileError", err.Error(), nil))
	}

	filename := cell.ID
	if filename == "" {
		filename = "cell.js"
	}
	program, err := goja.Compile(filename, transformed, false)
	if err != nil {
		return c.finish(started, outputs, errorResult("CompileError", err.Error(), nil))
	}

	coordinator := c.NewCoordinator(func(name, message string) {
		appendStream(streamStderrRecord(fmt.Sprintf("%s: %s\n", name, message)))
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

	value, err := c.vm.RunProgram(program)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			coordinator.ClearAll()
			return c.finish(started, outputs, c.timeLimitResult(appendDisplay))
		}
		name, message, traceback := decomposeRunError(err)
		return c.finish(started, outputs, errorResult(name, message, traceback))
	}

	promiseSettled := func() bool { return true }
	var promise *goja.Promise
	if p, ok := value.Export().(*goja.Promise); ok {
		promise = p
		promiseSettled = func() bool { return p.State() != goja.PromiseStatePending }
	}

	if _, ok := coordinator.Drain(runCtx, deadline, promiseSettled); !ok {
		coordinator.ClearAll()
		return c.finish(started, outputs, c.timeLimitResult(appendDisplay))
	}

	if promise != nil && promise.State() == goja.PromiseStateRejected {
		name, message := decomposeThrownValue(promise.Result())
		return c.finish(started, outputs, errorResult(name, message, nil))
	}

	if asyncErrs := coordinator.AsyncErrors(); len(asyncErrs) > 0 {
		first := asyncErrs[0]
		return c.finish(started, outputs, errorResult(first.Name, first.Message, first.Traceback))
	}

	if promise != nil {
		c.captureResult(promise.Result(), appendDisplay)
	}

	return c.finish(started, outputs, model.ExecutionRecord{Status: model.StatusOK})
}

// captureResult applies the return-value coercion rules (spec.md
// §4.9) to a resolved promise's value, emitting a Display record when
// the rules call for one.
func (c *Context) captureResult(v goja.Value, appendDisplay func(model.OutputRecord)) {
	if v == nil {
		return
	}
	_, isCallable := goja.AssertFunction(v)
	rec, ok := display.CoerceCaptured(c.exportForConsole(v), goja.IsUndefined(v), isCallable)
	if ok {
		appendDisplay(rec)
	}
}

// timeLimitResult builds the warn alert display spec.md §4.8 requires
// when a drain stage is cut off by the deadline, and the error
// execution record that accompanies it.
func (c *Context) timeLimitResult(appendDisplay func(model.OutputRecord)) model.ExecutionRecord {
	appendDisplay(model.OutputRecord{
		Kind: model.OutputDisplay,
		Data: map[string]any{
			display.UIMimeType: map[string]any{
				"ui":    "alert",
				"level": "warn",
				"title": "Execution time limit reached",
				"text":  "Pending timers were stopped.",
			},
		},
	})
	return errorResult("TimeoutError", (&kernelerr.TimeoutError{}).Error(), nil)
}

func (c *Context) finish(started time.Time, outputs []model.OutputRecord, exec model.ExecutionRecord) model.Result {
	exec.Started = started
	exec.Ended = time.Now()
	return model.Result{Outputs: outputs, Execution: exec}
}

func errorResult(name, message string, traceback []string) model.ExecutionRecord {
	return model.ExecutionRecord{
		Status: model.StatusError,
		Error: &model.OutputRecord{
			Kind:           model.OutputError,
			ErrorName:      name,
			ErrorMessage:   message,
			ErrorTraceback: traceback,
		},
	}
}

// decomposeRunError unwraps a goja.Exception (a thrown JS value) into
// its name, message, and a line-split stack traceback; any other Go
// error (a parse error the compiler itself raised) is reported as a
// generic Error with no traceback.
func decomposeRunError(err error) (name, message string, traceback []string) {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		name, message = decomposeThrownValue(ex.Value())
		return name, message, splitTraceback(ex.String())
	}
	return "Error", err.Error(), nil
}

func splitTraceback(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
