package shortcut

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher routes events from a Stream to the actions in a Registry.
type Dispatcher struct {
	reg    *Registry
	logger *slog.Logger

	mu     sync.Mutex
	cancel func()
}

// NewDispatcher returns a Dispatcher backed by reg. A nil logger discards
// output.
func NewDispatcher(reg *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{reg: reg, logger: logger}
}

// Attach subscribes the dispatcher to s. A dispatcher holds at most one
// subscription; attaching again while attached is a no-op.
func (d *Dispatcher) Attach(s *Stream) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}
	d.cancel = s.Subscribe(d.Dispatch)
}

// Detach removes the stream subscription created by Attach.
func (d *Dispatcher) Detach() {
	d.mu.Lock()
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Dispatch invokes the action bound to ev and reports whether one ran.
// Events aimed at text-accepting targets are ignored without a lookup.
func (d *Dispatcher) Dispatch(ev Event) bool {
	if ev.Target.AcceptsText() || ev.Key == "" {
		return false
	}
	id := ev.ID()
	action, ok := d.reg.lookupID(id)
	if !ok {
		return false
	}
	d.logger.Log(context.Background(), slog.LevelDebug, "shortcut", "id", id)
	action()
	return true
}
