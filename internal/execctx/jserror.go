package execctx

import "github.com/dop251/goja"

// newJSError builds a real JS Error object (not a bare string) so that
// `catch (e) { e.message }` works the way spec.md's scenarios (S2)
// require; panicking with a goja.Value that isn't an Error wouldn't
// give user code anything to read .message off of.
func newJSError(vm *goja.Runtime, name, message string) goja.Value {
	ctor := vm.Get("Error")
	obj, err := vm.New(ctor, vm.ToValue(message))
	if err != nil {
		return vm.ToValue(message)
	}
	_ = obj.Set("name", name)
	return obj
}

// throwNamed panics with a named JS Error, the standard way every
// facade in this package raises a PolicyError in-band so it unwinds
// through goja's normal exception machinery and is catchable by user
// code (spec.md §4.3–§4.5, §7).
func throwNamed(vm *goja.Runtime, name, message string) {
	panic(newJSError(vm, name, message))
}
