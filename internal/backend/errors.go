package backend

import "errors"

// Sentinel errors for process and slot operations.
var (
	// ErrProcessNotStarted is returned when an operation requires a started process.
	ErrProcessNotStarted = errors.New("process not started")

	// ErrProcessAlreadyStarted is returned when starting a process twice.
	ErrProcessAlreadyStarted = errors.New("process already started")

	// ErrSlotOccupied is returned when storing into a slot that holds a handle.
	ErrSlotOccupied = errors.New("handle slot already occupied")

	// ErrSlotClosed is returned when storing into a slot after termination.
	ErrSlotClosed = errors.New("handle slot closed")
)
