// Package policy implements the decision logic behind the Module
// Resolver & Policy Gate, Sandboxed Filesystem Facade, and Process
// Facade (spec.md §4.3–§4.5): which module a require() call resolves
// to, whether a filesystem path argument is allowed, and how the
// process facade's surface is redacted. It is intentionally free of
// any goja/goja_nodejs dependency so the dispatch rules can be unit
// tested as plain Go; internal/execctx wires these decisions into the
// actual sandboxed runtime.
package policy

// Variant identifies how the gate dispatches a require() specifier.
type Variant int

const (
	// VariantPassthrough delegates to the ordinary resolver rooted in
	// the sandbox directory: installed dependencies and builtin
	// platform modules not otherwise intercepted.
	VariantPassthrough Variant = iota
	// VariantInjected resolves to the @nodebooks/ui helper package.
	VariantInjected
	// VariantWrapFs resolves to the Sandboxed Filesystem Facade.
	VariantWrapFs
	// VariantWrapProcess resolves to the Process Facade.
	VariantWrapProcess
	// VariantDeny always fails with a PolicyError.
	VariantDeny
	// VariantWrapNet resolves to a wrapper preserving client APIs but
	// replacing createServer-family members with a PolicyError stub.
	VariantWrapNet
	// VariantWrapDgram resolves to a wrapper whose sockets fail on
	// bind/multicast operations.
	VariantWrapDgram
)

func (v Variant) String() string {
	switch v {
	case VariantInjected:
		return "injected"
	case VariantWrapFs:
		return "wrap-fs"
	case VariantWrapProcess:
		return "wrap-process"
	case VariantDeny:
		return "deny"
	case VariantWrapNet:
		return "wrap-net"
	case VariantWrapDgram:
		return "wrap-dgram"
	default:
		return "passthrough"
	}
}

// NetKind distinguishes the network modules VariantWrapNet covers, so
// the wrapper can start from the right base client API.
type NetKind int

const (
	NetKindNone NetKind = iota
	NetKindHTTP
	NetKindHTTPS
	NetKindHTTP2
	NetKindTLS
	NetKindTCP
)

// InjectedPackageName is the module specifier for the helper package
// the Workspace Manager injects into every sandbox (spec.md §4.1, §6).
const InjectedPackageName = "@nodebooks/ui"

var fsModules = map[string]bool{
	"fs": true, "node:fs": true,
	"fs/promises": true, "node:fs/promises": true,
}

var processModules = map[string]bool{
	"process": true, "node:process": true,
}

var deniedModules = map[string]bool{
	"child_process": true, "node:child_process": true,
}

var dgramModules = map[string]bool{
	"dgram": true, "node:dgram": true,
}

var netModuleKinds = map[string]NetKind{
	"http": NetKindHTTP, "node:http": NetKindHTTP,
	"https": NetKindHTTPS, "node:https": NetKindHTTPS,
	"http2": NetKindHTTP2, "node:http2": NetKindHTTP2,
	"tls": NetKindTLS, "node:tls": NetKindTLS,
	"net": NetKindTCP, "node:net": NetKindTCP,
}

// Classify reports how the gate dispatches moduleName (spec.md §4.3).
// The returned NetKind is only meaningful when Variant is
// VariantWrapNet.
func Classify(moduleName string) (Variant, NetKind) {
	switch {
	case moduleName == InjectedPackageName || moduleName == InjectedPackageName+"/native":
		return VariantInjected, NetKindNone
	case fsModules[moduleName]:
		return VariantWrapFs, NetKindNone
	case processModules[moduleName]:
		return VariantWrapProcess, NetKindNone
	case deniedModules[moduleName]:
		return VariantDeny, NetKindNone
	case dgramModules[moduleName]:
		return VariantWrapDgram, NetKindNone
	}
	if kind, ok := netModuleKinds[moduleName]; ok {
		return VariantWrapNet, kind
	}
	return VariantPassthrough, NetKindNone
}

// KnownModuleNames lists every specifier Classify resolves to
// something other than VariantPassthrough, so internal/execctx can
// register a native module loader for each without hand-duplicating
// the name tables above.
func KnownModuleNames() []string {
	names := []string{InjectedPackageName, InjectedPackageName + "/native"}
	for name := range fsModules {
		names = append(names, name)
	}
	for name := range processModules {
		names = append(names, name)
	}
	for name := range deniedModules {
		names = append(names, name)
	}
	for name := range dgramModules {
		names = append(names, name)
	}
	for name := range netModuleKinds {
		names = append(names, name)
	}
	return names
}

// ServerMembers are the createServer-family members VariantWrapNet
// replaces with a PolicyError stub. execctx's net module is a fresh
// request/get/connect surface, not a wrapper over Node's own http/net
// modules (there is none to wrap in a goja embedding), so this table
// names what the Module Resolver & Policy Gate blocks by kind, not
// members of a pass-through client object.
var ServerMembers = map[string]bool{
	"createServer":       true,
	"createSecureServer": true,
	"Server":             true,
}

// DgramBlockedMembers are the dgram socket methods that fail with a
// PolicyError. The sandbox's socket object offers only send, close and
// on besides these, and they are no-ops that perform no network I/O.
var DgramBlockedMembers = map[string]bool{
	"bind":                        true,
	"addMembership":               true,
	"setMulticastTTL":             true,
	"addSourceSpecificMembership": true,
	"dropSourceSpecificMembership": true,
}
