// Package execctx implements the Execution Context (spec.md §4.7): the
// long-lived goja.Runtime for a single (kernel, notebook) pair, wiring
// together the Module Resolver & Policy Gate, the Sandboxed Filesystem
// and Process Facades, the Timer & Async Coordinator, and the Display
// & Console Pipeline around a single evaluation scope.
//
// This is the only package in the module that imports goja directly.
// internal/policy, internal/timer, and internal/display are kept
// goja-agnostic so their logic can be unit tested without spinning up
// a runtime; execctx is the glue that calls Export() on the way out
// and wraps goja.Callable on the way in.
package execctx

import (
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"

	"github.com/nodebooks/kernel/internal/display"
	"github.com/nodebooks/kernel/internal/policy"
	"github.com/nodebooks/kernel/internal/timer"
	"github.com/nodebooks/kernel/pkg/kernellog"
)

// Context is the Execution Context for one notebook: one goja.Runtime,
// reused across cells so Pass A's globalThis promotions persist
// (spec.md §4.7 "Cross-cell visibility") until Reset or process exit.
type Context struct {
	// mu serializes cell execution: spec.md §5 "the Kernel executes one
	// cell at a time per notebook", and a goja.Runtime is never safe for
	// concurrent use regardless.
	mu sync.Mutex

	NotebookID string
	SandboxDir string

	vm       *goja.Runtime
	registry *require.Registry
	env      *policy.EnvView

	processObject goja.Value
	envObject     goja.Value

	currentEmit streamFunc

	handlers *handlerRegistry

	logger kernellog.Logger
}

// New creates an Execution Context for notebookID rooted at sandboxDir,
// with envVars as the notebook's environment mapping (spec.md §6
// "Environment variables consumed: only those passed per-notebook via
// environment.variables").
func New(notebookID, sandboxDir string, envVars map[string]string) *Context {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	c := &Context{
		NotebookID: notebookID,
		SandboxDir: sandboxDir,
		vm:         vm,
		env:        policy.NewEnvView(envVars),
		handlers:   newHandlerRegistry(),
		logger:     kernellog.L().With(kernellog.WithNotebookID(notebookID)),
	}

	c.bootstrap()
	return c
}

// bootstrap installs every ambient binding a fresh runtime needs
// before any user code runs: the sentinel-marked global, require, the
// process facade, and a no-op console (rebound to a real sink per
// cell by BindCellSinks).
func (c *Context) bootstrap() {
	global := c.vm.GlobalObject()
	_ = global.Set(display.GlobalSentinelKey, true)

	c.registry = require.NewRegistry(
		require.WithGlobalFolders(c.SandboxDir),
		require.WithLoader(sandboxSourceLoader(c.SandboxDir)),
	)
	registerPolicyModules(c.registry, c)
	c.registry.Enable(c.vm)

	c.installProcess()
	c.BindCellSinks(nil, nil)
}

// Runtime exposes the underlying goja.Runtime to the Kernel package for
// compiling and running transformed cell source; kept here rather than
// in execute.go since it's the one piece of state execute.go needs.
func (c *Context) Runtime() *goja.Runtime { return c.vm }

// Lock/Unlock let the Kernel serialize a whole execute()/
// invoke_interaction() call (transform, run, drain) around a single
// Context, since the Runtime itself has no internal locking.
func (c *Context) Lock()   { c.mu.Lock() }
func (c *Context) Unlock() { c.mu.Unlock() }

// NewCoordinator builds a fresh Timer & Async Coordinator for one
// cell's evaluation; a Context does not keep one across cells because
// spec.md §4.8's pending sets are scoped to a single execution.
func (c *Context) NewCoordinator(onAsyncStderr func(name, message string)) *timer.Coordinator {
	return timer.New(onAsyncStderr)
}

// Reset discards cross-cell state by rebuilding the runtime from
// scratch (spec.md §6 "reset(notebook_id) discards the Execution
// Context; next execute recreates it" — modeled here as in-place
// recreation so callers holding a *Context see a reset context rather
// than needing to re-fetch one from a registry).
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vm = goja.New()
	c.vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	c.handlers = newHandlerRegistry()
	c.bootstrap()
}

// EnvView exposes the notebook's masked environment view so the
// Interaction Dispatcher and Kernel can reuse it without re-deriving
// it from raw environment maps.
func (c *Context) EnvView() *policy.EnvView { return c.env }
