package execctx

import (
	"os"
	"path/filepath"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"

	"github.com/nodebooks/kernel/internal/policy"
)

// fsModuleLoader builds the Sandboxed Filesystem Facade (spec.md
// §4.4): every method resolves its path argument(s) against the
// sandbox root via policy.ResolvePath before touching disk, failing
// with the PolicyError the gate mandates — even before any I/O
// occurs — if the resolved path escapes the sandbox.
//
// "fs/promises" shares the same method set; Node's promise functions
// are just the sync functions' async counterparts without a callback
// argument, which is how they're exposed here too (§4.4's "behavior is
// otherwise identical to the underlying filesystem primitives").
func fsModuleLoader(c *Context) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		exports := module.Get("exports").(*goja.Object)

		resolve := func(raw goja.Value) string {
			norm, ok := policy.NormalizePathArg(raw.Export())
			if !ok {
				throwNamed(vm, "TypeError", "path argument must be a string, Buffer, or URL")
			}
			abs, err := policy.ResolvePath(c.SandboxDir, norm)
			if err != nil {
				throwNamed(vm, "PolicyError", err.Error())
			}
			return abs
		}

		set := func(name string, fn func(goja.FunctionCall) goja.Value) {
			_ = exports.Set(name, fn)
		}

		set("existsSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			_, err := os.Stat(abs)
			return vm.ToValue(err == nil)
		})
		set("readFileSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			data, err := os.ReadFile(abs)
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			if encoding(call, 1) != "" {
				return vm.ToValue(string(data))
			}
			return vm.ToValue(vm.NewArrayBuffer(data))
		})
		set("writeFileSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			data := []byte(arg(call, 1).String())
			if err := os.WriteFile(abs, data, 0o644); err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("appendFileSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			f, err := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			defer f.Close()
			if _, err := f.WriteString(arg(call, 1).String()); err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("mkdirSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			recursive := false
			if opts, ok := arg(call, 1).Export().(map[string]interface{}); ok {
				recursive, _ = opts["recursive"].(bool)
			}
			var err error
			if recursive {
				err = os.MkdirAll(abs, 0o755)
			} else {
				err = os.Mkdir(abs, 0o755)
			}
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("rmdirSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			if err := os.Remove(abs); err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("rmSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			recursive := false
			if opts, ok := arg(call, 1).Export().(map[string]interface{}); ok {
				recursive, _ = opts["recursive"].(bool)
			}
			var err error
			if recursive {
				err = os.RemoveAll(abs)
			} else {
				err = os.Remove(abs)
			}
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("unlinkSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			if err := os.Remove(abs); err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("readdirSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			entries, err := os.ReadDir(abs)
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name()
			}
			return vm.ToValue(names)
		})
		set("statSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			info, err := os.Stat(abs)
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return vm.ToValue(statObject(vm, info))
		})
		set("lstatSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			info, err := os.Lstat(abs)
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return vm.ToValue(statObject(vm, info))
		})
		set("renameSync", func(call goja.FunctionCall) goja.Value {
			from, to := resolve(arg(call, 0)), resolve(arg(call, 1))
			if err := os.Rename(from, to); err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("copyFileSync", func(call goja.FunctionCall) goja.Value {
			from, to := resolve(arg(call, 0)), resolve(arg(call, 1))
			data, err := os.ReadFile(from)
			if err == nil {
				err = os.WriteFile(to, data, 0o644)
			}
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("realpathSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			real, err := filepath.EvalSymlinks(abs)
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return vm.ToValue(real)
		})
		set("chmodSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			mode := int64(arg(call, 1).ToInteger())
			if err := os.Chmod(abs, os.FileMode(mode)); err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("symlinkSync", func(call goja.FunctionCall) goja.Value {
			target, linkPath := resolve(arg(call, 0)), resolve(arg(call, 1))
			if err := os.Symlink(target, linkPath); err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})
		set("readlinkSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			target, err := os.Readlink(abs)
			if err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return vm.ToValue(target)
		})
		set("accessSync", func(call goja.FunctionCall) goja.Value {
			abs := resolve(arg(call, 0))
			if _, err := os.Stat(abs); err != nil {
				throwNamed(vm, "Error", err.Error())
			}
			return goja.Undefined()
		})

		// Async (callback-style) variants run their operation
		// synchronously and invoke the Node-style (err, result) callback
		// immediately; there is no libuv thread pool to defer onto, and
		// the Timer & Async Coordinator has already settled by the time a
		// real deferral would matter for a single-cell evaluation.
		asyncPairs := []struct {
			syncName, asyncName string
		}{
			{"readFileSync", "readFile"}, {"writeFileSync", "writeFile"},
			{"mkdirSync", "mkdir"}, {"rmdirSync", "rmdir"}, {"rmSync", "rm"},
			{"unlinkSync", "unlink"}, {"readdirSync", "readdir"},
			{"statSync", "stat"}, {"lstatSync", "lstat"},
			{"renameSync", "rename"}, {"copyFileSync", "copyFile"},
			{"realpathSync", "realpath"}, {"chmodSync", "chmod"},
			{"symlinkSync", "symlink"}, {"readlinkSync", "readlink"},
			{"accessSync", "access"},
		}
		for _, p := range asyncPairs {
			syncFn, _ := goja.AssertFunction(exports.Get(p.syncName))
			name := p.asyncName
			set(name, wrapAsync(vm, syncFn))
		}

		promises := vm.NewObject()
		for _, p := range asyncPairs {
			syncFn, _ := goja.AssertFunction(exports.Get(p.syncName))
			_ = promises.Set(p.asyncName, wrapPromise(vm, syncFn))
		}
		_ = exports.Set("promises", promises)
	}
}

// fsPromisesModuleLoader builds the "fs/promises" module: the same
// path-policed operations as fsModuleLoader, but exported directly as
// promise-returning functions rather than nested under a `.promises`
// property, matching how Node's own fs/promises module is shaped.
func fsPromisesModuleLoader(c *Context) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		tmpModule := vm.NewObject()
		_ = tmpModule.Set("exports", vm.NewObject())
		fsModuleLoader(c)(vm, tmpModule)

		fsExports := tmpModule.Get("exports").(*goja.Object)
		_ = module.Set("exports", fsExports.Get("promises"))
	}
}

func arg(call goja.FunctionCall, i int) goja.Value {
	if i < len(call.Arguments) {
		return call.Arguments[i]
	}
	return goja.Undefined()
}

func encoding(call goja.FunctionCall, i int) string {
	v := arg(call, i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	if s, ok := v.Export().(string); ok {
		return s
	}
	if m, ok := v.Export().(map[string]interface{}); ok {
		if enc, ok := m["encoding"].(string); ok {
			return enc
		}
	}
	return ""
}

func statObject(vm *goja.Runtime, info os.FileInfo) map[string]interface{} {
	return map[string]interface{}{
		"size":      info.Size(),
		"mode":      int64(info.Mode()),
		"mtimeMs":   float64(info.ModTime().UnixMilli()),
		"isFile":    func() bool { return info.Mode().IsRegular() },
		"isDirectory": func() bool { return info.IsDir() },
	}
}

// wrapAsync adapts a synchronous Go-backed fs function into a
// Node-style (...args, callback) function, invoking callback with
// (error, result) or (error) on the same call stack.
func wrapAsync(vm *goja.Runtime, syncFn goja.Callable) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		cbVal := call.Arguments[len(call.Arguments)-1]
		cb, ok := goja.AssertFunction(cbVal)
		if !ok {
			return goja.Undefined()
		}
		args := call.Arguments[:len(call.Arguments)-1]
		result, err := callCatching(vm, syncFn, args)
		if err != nil {
			_, _ = cb(goja.Undefined(), vm.ToValue(err.Error()))
			return goja.Undefined()
		}
		_, _ = cb(goja.Undefined(), goja.Null(), result)
		return goja.Undefined()
	}
}

// wrapPromise adapts a synchronous Go-backed fs function into a
// function returning a resolved or rejected native Promise.
func wrapPromise(vm *goja.Runtime, syncFn goja.Callable) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		promise, resolve, reject := vm.NewPromise()
		result, err := callCatching(vm, syncFn, call.Arguments)
		if err != nil {
			reject(vm.ToValue(err.Error()))
		} else {
			resolve(result)
		}
		return vm.ToValue(promise)
	}
}

func callCatching(vm *goja.Runtime, fn goja.Callable, args []goja.Value) (result goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if v, ok := r.(goja.Value); ok {
				err = &panicError{msg: v.String()}
				return
			}
			panic(r)
		}
	}()
	result, err = fn(goja.Undefined(), args...)
	return result, err
}

type panicError struct{ msg string }

func (e *panicError) Error() string { return e.msg }
