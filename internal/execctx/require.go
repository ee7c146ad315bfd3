package execctx

import (
	"os"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"

	"github.com/nodebooks/kernel/internal/kernelerr"
	"github.com/nodebooks/kernel/internal/policy"
)

// sandboxSourceLoader reads modules from the sandbox's own
// node_modules tree, the "ordinary resolver rooted in the sandbox
// directory" spec.md §4.3 falls through to for anything the policy
// gate doesn't classify specially.
func sandboxSourceLoader(sandboxDir string) require.SourceLoader {
	return func(path string) ([]byte, error) {
		return os.ReadFile(path)
	}
}

// registerPolicyModules installs one native module per policy.Variant
// the Module Resolver & Policy Gate can produce (spec.md §4.3),
// dispatching every specifier goja_nodejs's require() sees through
// policy.Classify before it ever reaches the ordinary file resolver —
// "the gate is the only resolver present in the Execution Context."
func registerPolicyModules(reg *require.Registry, c *Context) {
	for _, name := range policy.KnownModuleNames() {
		variant, kind := policy.Classify(name)
		switch variant {
		case policy.VariantInjected:
			reg.RegisterNativeModule(name, uiModuleLoader(c))
		case policy.VariantWrapFs:
			if name == "fs/promises" || name == "node:fs/promises" {
				reg.RegisterNativeModule(name, fsPromisesModuleLoader(c))
			} else {
				reg.RegisterNativeModule(name, fsModuleLoader(c))
			}
		case policy.VariantWrapProcess:
			reg.RegisterNativeModule(name, processModuleLoader(c))
		case policy.VariantDeny:
			reg.RegisterNativeModule(name, denyModuleLoader(name))
		case policy.VariantWrapNet:
			reg.RegisterNativeModule(name, netModuleLoader(c, kind))
		case policy.VariantWrapDgram:
			reg.RegisterNativeModule(name, dgramModuleLoader(c))
		}
	}
}

func denyModuleLoader(moduleName string) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		throwNamed(vm, "PolicyError", kernelerr.NewPolicyErrorf("module %q is not permitted in a notebook sandbox", moduleName).Error())
	}
}
