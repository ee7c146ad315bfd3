package execctx

import (
	"sync"

	"github.com/dop251/goja"
	"github.com/google/uuid"
)

// handlerRegistry backs the Interaction Dispatcher (spec.md §4.10): a
// UI helper registers a callable under an opaque handler id, embedded
// in the display payload's action.handlerId; invoke_interaction later
// looks it up by id.
//
// Lifetime: Context.BindCellSinks clears the whole registry at the
// start of every cell run, so a handler stays valid only until the
// next cell (any cell, not just the one that registered it) executes;
// Context.Reset rebuilds the registry from scratch. Handlers are not
// tracked per owning cell.
type handlerRegistry struct {
	mu       sync.Mutex
	handlers map[string]goja.Callable
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{handlers: map[string]goja.Callable{}}
}

func (r *handlerRegistry) register(fn goja.Callable) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.handlers[id] = fn
	return id
}

func (r *handlerRegistry) lookup(id string) (goja.Callable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.handlers[id]
	return fn, ok
}

func (r *handlerRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = map[string]goja.Callable{}
}

// RegisterHandler exposes registration to the @nodebooks/ui native
// module (ui.go), keeping handlerRegistry itself unexported.
func (c *Context) RegisterHandler(fn goja.Callable) string {
	return c.handlers.register(fn)
}

// LookupHandler is used by the Interaction Dispatcher
// (internal/interaction) to resolve a handler_id from invoke_interaction.
func (c *Context) LookupHandler(id string) (goja.Callable, bool) {
	return c.handlers.lookup(id)
}
