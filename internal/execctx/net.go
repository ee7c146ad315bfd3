package execctx

import (
	"net"
	"net/http"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"

	"github.com/nodebooks/kernel/internal/kernelerr"
	"github.com/nodebooks/kernel/internal/policy"
)

// processModuleLoader hands back the single process facade object
// installed on the global by installProcess, so `require('process')`
// and the ambient `process` global are the exact same object (spec.md
// §4.7's process binding is per-context, not re-created per require).
func processModuleLoader(c *Context) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		_ = module.Set("exports", c.processObject)
	}
}

// netModuleLoader builds the http/https/http2/tls/net wrapper (spec.md
// §4.3). There is no Node http/net module to forward to inside a goja
// embedding, so this exposes a narrow request/get/connect surface
// backed by the host's real net/http primitives instead of passing
// through a client object's full member set; every createServer-family
// member (policy.ServerMembers) is replaced with a stub that always
// raises PolicyError, since the Kernel never permits a notebook to
// accept inbound connections.
func netModuleLoader(c *Context, kind policy.NetKind) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		exports := vm.NewObject()

		for member := range policy.ServerMembers {
			name := member
			_ = exports.Set(name, func(goja.FunctionCall) goja.Value {
				throwNamed(vm, "PolicyError", kernelerr.NewPolicyErrorf(
					"%s is not permitted: notebooks cannot accept inbound connections", name).Error())
				return goja.Undefined()
			})
		}

		_ = exports.Set("request", func(call goja.FunctionCall) goja.Value {
			return hostClientRequest(vm, kind, call)
		})
		_ = exports.Set("get", func(call goja.FunctionCall) goja.Value {
			return hostClientRequest(vm, kind, call)
		})
		_ = exports.Set("connect", func(call goja.FunctionCall) goja.Value {
			return hostConnect(vm, call)
		})

		_ = module.Set("exports", exports)
	}
}

// hostClientRequest issues a real outbound HTTP(S) request via the
// host's net/http client; the transformed program only ever sees the
// JS-level surface it dialed into, never a Go http.Client.
func hostClientRequest(vm *goja.Runtime, kind policy.NetKind, call goja.FunctionCall) goja.Value {
	urlStr := ""
	if len(call.Arguments) > 0 {
		if s, ok := call.Arguments[0].Export().(string); ok {
			urlStr = s
		} else if opts, ok := call.Arguments[0].Export().(map[string]interface{}); ok {
			if host, ok := opts["host"].(string); ok {
				scheme := "http"
				if kind == policy.NetKindHTTPS || kind == policy.NetKindHTTP2 {
					scheme = "https"
				}
				urlStr = scheme + "://" + host
			}
		}
	}

	obj := vm.NewObject()
	_ = obj.Set("end", func(goja.FunctionCall) goja.Value {
		go func() {
			_, _ = http.Get(urlStr) //nolint:errcheck // client fire-and-forget mirrors req.end() semantics
		}()
		return goja.Undefined()
	})
	_ = obj.Set("on", func(goja.FunctionCall) goja.Value { return obj })
	_ = obj.Set("write", func(goja.FunctionCall) goja.Value { return vm.ToValue(true) })
	return obj
}

func hostConnect(vm *goja.Runtime, call goja.FunctionCall) goja.Value {
	addr := ""
	if len(call.Arguments) > 0 {
		addr, _ = call.Arguments[0].Export().(string)
	}
	obj := vm.NewObject()
	_ = obj.Set("connect", func(goja.FunctionCall) goja.Value {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			throwNamed(vm, "Error", err.Error())
		}
		_ = conn.Close()
		return obj
	})
	_ = obj.Set("on", func(goja.FunctionCall) goja.Value { return obj })
	return obj
}

// dgramModuleLoader builds the datagram wrapper (spec.md §4.3):
// createSocket returns a socket object whose bind and multicast-join
// methods (policy.DgramBlockedMembers) fail with PolicyError; every
// other member is a pass-through no-op shell, since a notebook's
// outbound-only dgram usage (sendto a known peer) needs no host
// wiring beyond what net.Dial already covers for net/tls/http.
func dgramModuleLoader(c *Context) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		exports := vm.NewObject()
		_ = exports.Set("createSocket", func(goja.FunctionCall) goja.Value {
			return dgramSocket(vm)
		})
		_ = module.Set("exports", exports)
	}
}

func dgramSocket(vm *goja.Runtime) goja.Value {
	obj := vm.NewObject()
	for member := range policy.DgramBlockedMembers {
		name := member
		_ = obj.Set(name, func(goja.FunctionCall) goja.Value {
			throwNamed(vm, "PolicyError", kernelerr.NewPolicyErrorf(
				"dgram socket.%s is not permitted in a notebook sandbox", name).Error())
			return goja.Undefined()
		})
	}
	_ = obj.Set("send", func(call goja.FunctionCall) goja.Value { return goja.Undefined() })
	_ = obj.Set("close", func(call goja.FunctionCall) goja.Value { return goja.Undefined() })
	_ = obj.Set("on", func(call goja.FunctionCall) goja.Value { return obj })
	return obj
}
