// Package kernel implements the Kernel's external interface (spec.md
// §6): the single entry point a transport layer (out of this
// module's scope) calls execute/invoke_interaction/interrupt/reset
// against. It aggregates the Workspace Manager, Dependency Installer,
// and per-notebook Execution Contexts the way the teacher's
// sandbox.APIStore aggregates its sub-stores behind one façade.
package kernel

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nodebooks/kernel/internal/cfg"
	"github.com/nodebooks/kernel/internal/execctx"
	"github.com/nodebooks/kernel/internal/installer"
	"github.com/nodebooks/kernel/internal/interaction"
	"github.com/nodebooks/kernel/internal/model"
	"github.com/nodebooks/kernel/internal/workspace"
	"github.com/nodebooks/kernel/pkg/kernellog"
)

// ExecuteRequest mirrors spec.md §6's execute(...) call.
type ExecuteRequest struct {
	Cell        model.Cell
	NotebookID  string
	Environment model.NotebookEnvironment
	OnStream    model.StreamSink
	OnDisplay   model.DisplaySink
	TimeoutMs   int
}

// Kernel is the process-wide aggregate: one Workspace Manager, one
// Dependency Installer, and a registry of one Execution Context per
// notebook that has executed at least once.
type Kernel struct {
	cfg       cfg.Config
	workspace *workspace.Manager
	dispatch  *interaction.Dispatcher

	mu       sync.Mutex
	contexts map[string]*notebookContext
}

// notebookContext bundles an Execution Context with the cancel
// function of whatever cell is currently running in it, so interrupt
// has something to call.
type notebookContext struct {
	mu     sync.Mutex
	ec     *execctx.Context
	cancel context.CancelFunc
}

// New builds a Kernel rooted at config.WorkspaceRoot, using the
// default npm-backed Dependency Installer.
func New(config cfg.Config) *Kernel {
	k := &Kernel{
		cfg:       config,
		workspace: workspace.New(config.WorkspaceRoot, installer.New()),
		contexts:  map[string]*notebookContext{},
	}
	k.dispatch = interaction.New(k.lookupContext)
	return k
}

func (k *Kernel) lookupContext(notebookID string) (*execctx.Context, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	nc, ok := k.contexts[notebookID]
	if !ok {
		return nil, false
	}
	return nc.ec, true
}

func (k *Kernel) notebookEntry(notebookID, sandboxDir string, vars map[string]string) *notebookContext {
	k.mu.Lock()
	defer k.mu.Unlock()
	nc, ok := k.contexts[notebookID]
	if !ok {
		nc = &notebookContext{ec: execctx.New(notebookID, sandboxDir, vars)}
		k.contexts[notebookID] = nc
	}
	return nc
}

// Execute implements spec.md §6's execute operation: WM ensures the
// sandbox, DI installs if the fingerprint changed, then the cell runs
// inside that notebook's Execution Context under a hard deadline.
func (k *Kernel) Execute(ctx context.Context, req ExecuteRequest) (model.Result, error) {
	installCtx, cancelInstall := context.WithTimeout(ctx, time.Duration(k.cfg.InstallTimeoutMs)*time.Millisecond)
	handle, err := k.workspace.Ensure(installCtx, req.NotebookID, req.Environment.Packages)
	cancelInstall()
	if err != nil {
		return model.Result{}, errors.Wrapf(err, "preparing workspace for notebook %s", req.NotebookID)
	}

	nc := k.notebookEntry(req.NotebookID, handle.Dir, req.Environment.Variables)

	nc.mu.Lock()
	defer nc.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	nc.cancel = cancel
	defer func() { nc.cancel = nil }()

	timeout := k.timeoutFor(req.Cell.TimeoutMs)
	kernellog.L().Info(ctx, "executing cell", kernellog.WithNotebookID(req.NotebookID), kernellog.WithCellID(req.Cell.ID))

	result := nc.ec.Execute(runCtx, req.Cell, timeout, req.OnStream, req.OnDisplay)
	return result, nil
}

// InvokeInteractionRequest mirrors spec.md §6's invoke_interaction(...) call.
type InvokeInteractionRequest struct {
	Event     model.InteractionEvent
	OnStream  model.StreamSink
	OnDisplay model.DisplaySink
	TimeoutMs int
}

// InvokeInteraction implements spec.md §6's invoke_interaction
// operation: the dispatcher looks up the handler, binds the hooks,
// invokes the callable and drains timers. The notebook's sandbox is
// not prepared again here; the handler runs in the Execution Context
// as the last Execute left it.
func (k *Kernel) InvokeInteraction(ctx context.Context, req InvokeInteractionRequest) model.Result {
	timeout := k.timeoutFor(req.TimeoutMs)
	return k.dispatch.Invoke(ctx, req.Event, timeout, req.OnStream, req.OnDisplay)
}

// Interrupt implements spec.md §6's interrupt(...): cancels the
// in-flight evaluation for notebookID, if one is running. cellID is
// accepted for interface parity with spec.md's signature; a kernel
// only ever runs one cell per notebook at a time (§5), so there is
// nothing to disambiguate by cell within a single notebook.
func (k *Kernel) Interrupt(notebookID, cellID string) {
	k.mu.Lock()
	nc, ok := k.contexts[notebookID]
	k.mu.Unlock()
	if !ok {
		return
	}
	nc.mu.Lock()
	cancel := nc.cancel
	nc.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Reset implements spec.md §6's reset(...) and SPEC_FULL §C.1: any
// in-flight execution for the notebook is cancelled first, then the
// Execution Context (and every Handler Registration it held) is
// dropped; the sandbox directory and installed dependencies are left
// untouched.
func (k *Kernel) Reset(notebookID string) {
	k.Interrupt(notebookID, "")

	k.mu.Lock()
	nc, ok := k.contexts[notebookID]
	k.mu.Unlock()
	if !ok {
		return
	}

	nc.mu.Lock()
	defer nc.mu.Unlock()
	nc.ec.Reset()
}

func (k *Kernel) timeoutFor(cellTimeoutMs int) time.Duration {
	ms := cellTimeoutMs
	if ms <= 0 {
		ms = k.cfg.KernelTimeoutMs
	}
	if ms < cfg.MinKernelTimeoutMs {
		ms = cfg.MinKernelTimeoutMs
	}
	if ms > cfg.MaxKernelTimeoutMs {
		ms = cfg.MaxKernelTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}
