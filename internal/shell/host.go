package shell

// Host is the window surface the launcher talks to. Implementations must
// accept AppendConsole and SetStatus from any goroutine.
type Host interface {
	// SetTitle sets the window title.
	SetTitle(title string)

	// AppendConsole adds one backend output line to the console view.
	AppendConsole(line string)

	// ConsoleText returns the current console view content.
	ConsoleText() string

	// SetStatus replaces the status line text.
	SetStatus(text string)

	// OnDestroyed registers a callback for the window-destroyed event.
	// Callbacks may fire more than once when several close paths trigger;
	// subscribers must tolerate that.
	OnDestroyed(fn func())

	// ShowAndRun shows the window and blocks until it is closed.
	ShowAndRun()

	// Close closes the window programmatically.
	Close()
}

// Action is a user-triggerable entry on the host's toolbar.
type Action struct {
	Label string
	Run   func()
}
