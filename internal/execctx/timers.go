package execctx

import (
	"time"

	"github.com/dop251/goja"

	"github.com/nodebooks/kernel/internal/kernelerr"
	"github.com/nodebooks/kernel/internal/timer"
)

// installTimers rebinds setTimeout/setInterval/clearTimeout/
// clearInterval to coord for the cell about to run. Timer primitives
// are re-bound per cell (rather than once in bootstrap) because the
// Timer & Async Coordinator itself is scoped to a single execution
// (spec.md §4.8's pending_* sets reset each run); binding to a stale
// coordinator after its Drain has returned would silently swallow any
// timer a detached callback tried to schedule.
func (c *Context) installTimers(coord *timer.Coordinator) {
	vm := c.vm

	_ = vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(arg(call, 0))
		if !ok {
			return vm.ToValue(int64(0))
		}
		delay := time.Duration(arg(call, 1).ToInteger()) * time.Millisecond
		extra := extraArgs(call, 2)
		h := coord.SetTimeout(delay, func() error { return invokeTimerCallback(vm, fn, extra) })
		return vm.ToValue(h)
	})
	_ = vm.Set("clearTimeout", func(call goja.FunctionCall) goja.Value {
		coord.ClearTimeout(arg(call, 0).ToInteger())
		return goja.Undefined()
	})
	_ = vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(arg(call, 0))
		if !ok {
			return vm.ToValue(int64(0))
		}
		period := time.Duration(arg(call, 1).ToInteger()) * time.Millisecond
		extra := extraArgs(call, 2)
		h := coord.SetInterval(period, func() error { return invokeTimerCallback(vm, fn, extra) })
		return vm.ToValue(h)
	})
	_ = vm.Set("clearInterval", func(call goja.FunctionCall) goja.Value {
		coord.ClearInterval(arg(call, 0).ToInteger())
		return goja.Undefined()
	})
	// setImmediate is modeled as a zero-delay one-shot timer; Node gives
	// it its own phase ahead of timers, a distinction spec.md §4.8 does
	// not call out separately.
	_ = vm.Set("setImmediate", func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(arg(call, 0))
		if !ok {
			return vm.ToValue(int64(0))
		}
		extra := extraArgs(call, 1)
		h := coord.SetTimeout(0, func() error { return invokeTimerCallback(vm, fn, extra) })
		return vm.ToValue(h)
	})
	_ = vm.Set("clearImmediate", func(call goja.FunctionCall) goja.Value {
		coord.ClearTimeout(arg(call, 0).ToInteger())
		return goja.Undefined()
	})
}

func extraArgs(call goja.FunctionCall, from int) []goja.Value {
	if from >= len(call.Arguments) {
		return nil
	}
	return call.Arguments[from:]
}

// invokeTimerCallback calls fn, converting a thrown JS value into the
// *kernelerr.AsyncError the Coordinator records and echoes to stderr
// (spec.md §4.8).
func invokeTimerCallback(vm *goja.Runtime, fn goja.Callable, args []goja.Value) error {
	_, err := fn(goja.Undefined(), args...)
	if err == nil {
		return nil
	}
	if ex, ok := err.(*goja.Exception); ok {
		name, message := decomposeThrownValue(ex.Value())
		return &kernelerr.AsyncError{Name: name, Message: message}
	}
	return &kernelerr.AsyncError{Name: "Error", Message: err.Error()}
}

// decomposeThrownValue pulls a .name/.message pair off a thrown value,
// falling back to a generic Error for anything that isn't shaped like
// one (a thrown string or number, say).
func decomposeThrownValue(v goja.Value) (name, message string) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return "Error", v.String()
	}
	name, _ = obj.Get("name").Export().(string)
	if name == "" {
		name = "Error"
	}
	if m, ok := obj.Get("message").Export().(string); ok {
		message = m
	} else {
		message = v.String()
	}
	return name, message
}
