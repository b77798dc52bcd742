package broadcast

import (
	"context"
	"sync"

	"github.com/rileyhilliard/gatewatch/internal/wire"
)

// Observer is one connected client.
type Observer interface {
	// ID uniquely identifies the observer for its lifetime.
	ID() string
	RemoteAddr() string
	// Send delivers one message. It must honor ctx's deadline.
	Send(ctx context.Context, env wire.Envelope) error
}

// Listener receives lifecycle events from a Registry.
//
// Started and Stopped are called with the registry lock held and must not
// call back into the registry. Joined is called without the lock.
type Listener interface {
	Started()
	Stopped()
	Joined(o Observer)
}

// Registry tracks connected observers and turns set-size edges into
// Started and Stopped events. It performs no I/O and never fails.
type Registry struct {
	mu        sync.Mutex
	observers map[string]Observer
	listener  Listener
}

// NewRegistry creates an empty Registry. The listener is attached by
// NewScheduler.
func NewRegistry() *Registry {
	return &Registry{observers: make(map[string]Observer)}
}

func (r *Registry) setListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = l
}

// Connect adds o and returns the resulting observer count. Adding an
// observer already present changes nothing and emits no events.
func (r *Registry) Connect(o Observer) int {
	r.mu.Lock()
	if _, ok := r.observers[o.ID()]; ok {
		n := len(r.observers)
		r.mu.Unlock()
		return n
	}
	r.observers[o.ID()] = o
	n := len(r.observers)
	l := r.listener
	if n == 1 && l != nil {
		l.Started()
	}
	r.mu.Unlock()

	if l != nil {
		l.Joined(o)
	}
	return n
}

// Disconnect removes o and returns the resulting observer count. Removing
// an absent observer is a no-op.
func (r *Registry) Disconnect(o Observer) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.observers[o.ID()]; !ok {
		return len(r.observers)
	}
	delete(r.observers, o.ID())
	n := len(r.observers)
	if n == 0 && r.listener != nil {
		r.listener.Stopped()
	}
	return n
}

// Snapshot returns a copy of the current observers. Callers may iterate it
// while observers connect and disconnect.
func (r *Registry) Snapshot() []Observer {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Observer, 0, len(r.observers))
	for _, o := range r.observers {
		out = append(out, o)
	}
	return out
}

// Len returns the number of connected observers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observers)
}
