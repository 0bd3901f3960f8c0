package tunnel

import (
	"context"
	"sync"
)

// Event is a resettable broadcast flag. Once set it stays set, and every
// reader observes it, until Clear is called.
type Event struct {
	mu  sync.Mutex
	set bool
	ch  chan struct{}
}

// NewEvent returns a cleared event.
func NewEvent() *Event {
	return &Event{ch: make(chan struct{})}
}

// Set raises the flag. Setting an already set event is a no-op and reports false.
func (e *Event) Set() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set {
		return false
	}
	e.set = true
	close(e.ch)
	return true
}

// IsSet reports whether the flag is raised.
func (e *Event) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}

// Done returns a channel that is closed once the event is set. The channel
// belongs to the current generation; callers must fetch it again after Clear.
func (e *Event) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ch
}

// Wait blocks until the event is set or ctx is done.
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clear lowers the flag and starts a new generation.
func (e *Event) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set {
		e.set = false
		e.ch = make(chan struct{})
	}
}
