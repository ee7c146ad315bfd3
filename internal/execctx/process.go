package execctx

import (
	"github.com/dop251/goja"

	"github.com/nodebooks/kernel/internal/kernelerr"
)

// envDynamicObject backs process.env with a live view over the
// notebook's environment mapping (spec.md §4.5): named reads/writes
// succeed, key enumeration reflects the current set, and the object
// never discloses values when it is itself the thing being printed
// (handled by identity-checked redaction in console.go, since a
// goja.DynamicObject has no hook for a custom inspect/toJSON).
type envDynamicObject struct {
	view *Context
}

func (e envDynamicObject) Get(key string) goja.Value {
	v, ok := e.view.env.Get(key)
	if !ok {
		return nil
	}
	return e.view.vm.ToValue(v)
}

func (e envDynamicObject) Set(key string, val goja.Value) bool {
	e.view.env.Set(key, val.String())
	return true
}

func (e envDynamicObject) Has(key string) bool {
	_, ok := e.view.env.Get(key)
	return ok
}

func (e envDynamicObject) Delete(key string) bool {
	e.view.env.Delete(key)
	return true
}

func (e envDynamicObject) Keys() []string {
	return e.view.env.Keys()
}

// installProcess builds the Process Facade (spec.md §4.5) on the
// global object: cwd() returns the sandbox dir; chdir/exit/kill deny;
// stdout/stderr are TTY-like pass-through writers; env is the live
// proxy above; the object's own identity is recognized by console.go
// for the "[Sandboxed process]" masking rule.
func (c *Context) installProcess() {
	proc := c.vm.NewObject()

	_ = proc.Set("cwd", func(goja.FunctionCall) goja.Value {
		return c.vm.ToValue(c.SandboxDir)
	})

	deny := func(capability string) func(goja.FunctionCall) goja.Value {
		return func(goja.FunctionCall) goja.Value {
			throwNamed(c.vm, "PolicyError", kernelerr.NewPolicyErrorf("process.%s is not permitted in a notebook sandbox", capability).Error())
			return goja.Undefined()
		}
	}
	_ = proc.Set("chdir", deny("chdir"))
	_ = proc.Set("exit", deny("exit"))
	_ = proc.Set("kill", deny("kill"))
	_ = proc.Set("toString", func(goja.FunctionCall) goja.Value {
		return c.vm.ToValue("[Sandboxed process]")
	})

	_ = proc.Set("stdout", c.ttyStream(func(text string) { c.emitStream(streamStdoutRecord(text)) }))
	_ = proc.Set("stderr", c.ttyStream(func(text string) { c.emitStream(streamStderrRecord(text)) }))

	envObj := c.vm.NewDynamicObject(envDynamicObject{view: c})
	_ = proc.Set("env", envObj)

	c.processObject = proc
	c.envObject = envObj

	_ = c.vm.Set("process", proc)
}

// ttyStream builds a writable, TTY-probing stream object: isTTY and
// the capability probes return true (spec.md §4.5 "present a TTY-like
// wrapper (capability probes return true)"), write() forwards to
// write.
func (c *Context) ttyStream(write func(text string)) *goja.Object {
	obj := c.vm.NewObject()
	_ = obj.Set("isTTY", true)
	_ = obj.Set("columns", 80)
	_ = obj.Set("rows", 24)
	_ = obj.Set("write", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			write(call.Arguments[0].String())
		}
		return c.vm.ToValue(true)
	})
	_ = obj.Set("hasColors", func(goja.FunctionCall) goja.Value { return c.vm.ToValue(true) })
	return obj
}
