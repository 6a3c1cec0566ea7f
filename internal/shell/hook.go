package shell

import (
	"github.com/scribeview/desktop/internal/backend"
	"github.com/scribeview/desktop/internal/logging"
)

// LifecycleHook terminates the backend when the window is destroyed.
//
// The hook owns the only transition out of the running state: it takes the
// handle from the slot, which closes the slot permanently, and issues one
// kill. A second invocation finds the slot empty and does nothing, so the
// kill happens at most once no matter how many close paths fire. Kill
// errors are ignored; the process may already be gone, and at this point
// the window is going away regardless.
type LifecycleHook struct {
	slot *backend.Slot
	log  *logging.Logger

	// onKilled runs after a kill was issued, at most once.
	onKilled func(p *backend.Process)
}

// HookOption configures a LifecycleHook.
type HookOption func(*LifecycleHook)

// WithHookLogger sets the hook's logger.
func WithHookLogger(log *logging.Logger) HookOption {
	return func(h *LifecycleHook) {
		if log != nil {
			h.log = log
		}
	}
}

// WithKilledHandler runs fn after the hook kills the backend.
func WithKilledHandler(fn func(p *backend.Process)) HookOption {
	return func(h *LifecycleHook) {
		h.onKilled = fn
	}
}

// NewLifecycleHook creates a hook bound to the given slot.
func NewLifecycleHook(slot *backend.Slot, opts ...HookOption) *LifecycleHook {
	h := &LifecycleHook{
		slot: slot,
		log:  logging.Null,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnDestroyed handles the window-destroyed event. Safe to call any number
// of times from any goroutine.
func (h *LifecycleHook) OnDestroyed() {
	p := h.slot.Take()
	if p == nil {
		return
	}

	_ = p.Kill()
	h.log.Debug("backend process %d killed on window destroy", p.PID())

	if h.onKilled != nil {
		h.onKilled(p)
	}
}
