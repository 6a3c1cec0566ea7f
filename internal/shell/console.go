package shell

import (
	"strings"
	"sync"
)

// ConsoleBuffer keeps the most recent backend output lines for the window's
// console view. Appends arrive from the process stream goroutine; reads
// come from the UI thread.
type ConsoleBuffer struct {
	mu       sync.Mutex
	lines    []string
	max      int
	onChange func()
}

// NewConsoleBuffer creates a buffer retaining up to max lines.
func NewConsoleBuffer(max int) *ConsoleBuffer {
	if max <= 0 {
		max = 500
	}
	return &ConsoleBuffer{max: max}
}

// SetOnChange registers a callback invoked after every append, outside the
// buffer lock.
func (b *ConsoleBuffer) SetOnChange(fn func()) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Append adds one line, evicting the oldest when full.
func (b *ConsoleBuffer) Append(line string) {
	b.mu.Lock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Lines returns a copy of the buffered lines, oldest first.
func (b *ConsoleBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Text returns the buffered lines joined with newlines.
func (b *ConsoleBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}

// Len returns the number of buffered lines.
func (b *ConsoleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
