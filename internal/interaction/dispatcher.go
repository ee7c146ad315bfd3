// Package interaction implements the Interaction Dispatcher (spec.md
// §4.10): routing an external UI event to the opaque handler_id that
// registered for it, inside the Execution Context that still owns
// that callback.
package interaction

import (
	"context"
	"time"

	"github.com/nodebooks/kernel/internal/execctx"
	"github.com/nodebooks/kernel/internal/model"
)

// ContextLookup resolves a notebook id to its live Execution Context,
// the same registry the Kernel keeps for execute(). A handler_id never
// encodes which notebook it belongs to (spec.md §4.10's ids are
// opaque), so the caller supplies the notebook id alongside it.
type ContextLookup func(notebookID string) (*execctx.Context, bool)

// Dispatcher is the stateless routing layer between a raw
// model.InteractionEvent and the Context.InvokeHandler call that
// actually runs it.
type Dispatcher struct {
	Lookup ContextLookup
}

// New builds a Dispatcher backed by lookup.
func New(lookup ContextLookup) *Dispatcher {
	return &Dispatcher{Lookup: lookup}
}

// Invoke resolves event.NotebookID to its Execution Context and runs
// the handler it names, within timeout, streaming through onStream/
// onDisplay as it produces output.
func (d *Dispatcher) Invoke(ctx context.Context, event model.InteractionEvent, timeout time.Duration, onStream, onDisplay func(model.OutputRecord)) model.Result {
	ec, ok := d.Lookup(event.NotebookID)
	if !ok {
		now := time.Now()
		return model.Result{
			Execution: model.ExecutionRecord{
				Started: now,
				Ended:   now,
				Status:  model.StatusError,
				Error: &model.OutputRecord{
					Kind:         model.OutputError,
					ErrorName:    "HandlerNotFoundError",
					ErrorMessage: "no execution context for notebook " + event.NotebookID,
				},
			},
		}
	}

	return ec.InvokeHandler(ctx, event.HandlerID, event.Event, timeout, onStream, onDisplay)
}
