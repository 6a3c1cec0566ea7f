package shell

import (
	"strings"
	"sync"
)

// StubHost is a Host that records calls instead of showing a window.
type StubHost struct {
	mu        sync.Mutex
	title     string
	status    string
	console   []string
	destroyed []func()
	closed    bool
	running   chan struct{}
}

var _ Host = (*StubHost)(nil)

// NewStubHost creates a stub host.
func NewStubHost() *StubHost {
	return &StubHost{running: make(chan struct{})}
}

func (s *StubHost) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
}

func (s *StubHost) AppendConsole(line string) {
	s.mu.Lock()
	s.console = append(s.console, line)
	s.mu.Unlock()
}

func (s *StubHost) ConsoleText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.console, "\n")
}

func (s *StubHost) SetStatus(text string) {
	s.mu.Lock()
	s.status = text
	s.mu.Unlock()
}

func (s *StubHost) OnDestroyed(fn func()) {
	s.mu.Lock()
	s.destroyed = append(s.destroyed, fn)
	s.mu.Unlock()
}

// ShowAndRun blocks until Close is called.
func (s *StubHost) ShowAndRun() {
	<-s.running
}

// Close unblocks ShowAndRun and fires the destroy callbacks, mirroring a
// real window teardown.
func (s *StubHost) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.FireDestroyed()
	close(s.running)
}

// FireDestroyed invokes the registered destroy callbacks.
func (s *StubHost) FireDestroyed() {
	s.mu.Lock()
	fns := append(([]func())(nil), s.destroyed...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Title returns the last title set.
func (s *StubHost) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Status returns the last status set.
func (s *StubHost) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ConsoleLines returns the appended console lines.
func (s *StubHost) ConsoleLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.console...)
}
