package app

// constError is a simple constant error type.
type constError string

func (e constError) Error() string { return string(e) }

// ErrAlreadyRunning indicates Run was called while the application is
// already active.
var ErrAlreadyRunning = constError("application already running")

// InitError represents an initialization error.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
