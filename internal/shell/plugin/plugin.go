// Package plugin holds the capability plugins exposed to the shell: native
// dialogs, scoped filesystem access, the platform opener, and an outbound
// HTTP client. A Registry tracks what registered; a plugin that fails to
// register is reported and skipped, never fatal.
package plugin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/scribeview/desktop/internal/logging"
	"github.com/scribeview/desktop/internal/shell"
)

// ErrAlreadyRegistered is returned when a plugin name is registered twice.
var ErrAlreadyRegistered = errors.New("plugin already registered")

// Plugin is one capability offered to the shell.
type Plugin interface {
	// Name identifies the plugin. Names are unique within a registry.
	Name() string

	// Register attaches the plugin to the host. Returning an error leaves
	// the plugin out of the registry.
	Register(host shell.Host) error
}

// EventType is the kind of registry event.
type EventType int

const (
	// EventRegistered is emitted after a successful registration.
	EventRegistered EventType = iota
	// EventFailed is emitted when a registration fails.
	EventFailed
)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventRegistered:
		return "registered"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event describes one registry change.
type Event struct {
	Type   EventType
	Plugin string
	Err    error
}

// EventHandler observes registry events. Handlers must not call back into
// the registry.
type EventHandler func(Event)

// Registry tracks registered plugins by name, preserving registration
// order for deterministic iteration.
type Registry struct {
	mu       sync.RWMutex
	plugins  map[string]Plugin
	order    []string
	handlers []EventHandler

	log *logging.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(log *logging.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		plugins: make(map[string]Plugin),
		log:     logging.Null,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnEvent registers an event handler.
func (r *Registry) OnEvent(fn EventHandler) {
	r.mu.Lock()
	r.handlers = append(r.handlers, fn)
	r.mu.Unlock()
}

// Register attaches one plugin to the host and records it.
func (r *Registry) Register(host shell.Host, p Plugin) error {
	name := p.Name()

	r.mu.Lock()
	if _, exists := r.plugins[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("plugin %q: %w", name, ErrAlreadyRegistered)
	}
	r.mu.Unlock()

	// Registration may touch the host; keep it outside the lock.
	if err := p.Register(host); err != nil {
		r.emit(Event{Type: EventFailed, Plugin: name, Err: err})
		return fmt.Errorf("register plugin %q: %w", name, err)
	}

	r.mu.Lock()
	if _, exists := r.plugins[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("plugin %q: %w", name, ErrAlreadyRegistered)
	}
	r.plugins[name] = p
	r.order = append(r.order, name)
	r.mu.Unlock()

	r.emit(Event{Type: EventRegistered, Plugin: name})
	return nil
}

// RegisterAll registers every plugin, skipping failures. The returned error
// joins the individual failures; callers log it and continue.
func (r *Registry) RegisterAll(host shell.Host, plugins ...Plugin) error {
	var errs []error
	for _, p := range plugins {
		if err := r.Register(host, p); err != nil {
			r.log.Warn("plugin %s unavailable: %v", p.Name(), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get returns a registered plugin by name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Names returns the registered plugin names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// emit delivers an event to all handlers, outside the registry lock.
func (r *Registry) emit(ev Event) {
	r.mu.RLock()
	handlers := append([]EventHandler(nil), r.handlers...)
	r.mu.RUnlock()
	for _, fn := range handlers {
		fn(ev)
	}
}
