package backend

import (
	"errors"
	"sync"
)

// Slot holds the supervised process handle.
//
// At most one live handle exists at any time. The Supervisor stores the
// handle once at startup; the lifecycle hook takes it exactly once on window
// destruction. Taking the handle closes the slot permanently, so a handle
// can never be re-populated after termination. All operations are serialized
// by the slot's lock, which makes read-clear-kill atomic against concurrent
// destruction events.
//
// The zero value is ready to use. A Slot is injected into its users rather
// than accessed as a package singleton.
type Slot struct {
	mu     sync.Mutex
	proc   *Process
	closed bool
}

// Store places a handle into the slot.
// Returns ErrSlotOccupied if a handle is already present and ErrSlotClosed
// if the slot has been taken; in the latter case the caller still owns the
// process and must dispose of it.
func (s *Slot) Store(p *Process) error {
	if p == nil {
		return errors.New("nil process")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSlotClosed
	}
	if s.proc != nil {
		return ErrSlotOccupied
	}
	s.proc = p
	return nil
}

// Take removes and returns the stored handle, closing the slot.
// Returns nil if the slot is empty. Only the first call can observe a
// handle; every later call is a no-op.
func (s *Slot) Take() *Process {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.proc
	s.proc = nil
	s.closed = true
	return p
}

// Peek returns the stored handle without clearing it, or nil.
func (s *Slot) Peek() *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc
}

// Empty reports whether the slot holds no handle.
func (s *Slot) Empty() bool {
	return s.Peek() == nil
}
