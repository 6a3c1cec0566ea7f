package backend

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// State represents the state of a supervised process.
type State int

const (
	// StateCreated indicates the process has been created but not started.
	StateCreated State = iota
	// StateRunning indicates the process is currently running.
	StateRunning
	// StateExited indicates the process has exited on its own.
	StateExited
	// StateKilled indicates the process was killed by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Process is the supervised backend process handle.
//
// It wraps an exec.Cmd with lifecycle tracking and optional console capture.
// Children are placed in their own process group so Kill takes down the
// whole tree (the package runner spawns the actual server as a child).
// It is safe for concurrent use.
type Process struct {
	// ID uniquely identifies this launch.
	ID string

	// Name is the launch strategy that produced the process.
	Name string

	// Dir is the backend directory the process was launched from.
	Dir string

	// Started is the time the process was started.
	Started time.Time

	cmd *exec.Cmd

	// console is the merged stdout+stderr stream (pipe or pty master).
	console io.ReadCloser
	onLine  LineHandler
	usePTY  bool

	// done is closed when the process exits.
	done chan struct{}

	state    atomic.Int32
	exitCode atomic.Int32
	ended    atomic.Int64
}

// ProcessOption configures a Process before start.
type ProcessOption func(*Process)

// WithName sets the strategy name recorded on the process.
func WithName(name string) ProcessOption {
	return func(p *Process) {
		p.Name = name
	}
}

// WithLineHandler streams each line of merged process output to fn.
func WithLineHandler(fn LineHandler) ProcessOption {
	return func(p *Process) {
		p.onLine = fn
	}
}

// WithPTY runs the process under a pseudo-terminal so line-buffered
// interpreters flush output promptly. Falls back to pipes on platforms
// without pty support. Only takes effect together with WithLineHandler.
func WithPTY() ProcessOption {
	return func(p *Process) {
		p.usePTY = true
	}
}

// NewProcess creates a Process wrapping the given command.
// The command must not have been started.
func NewProcess(cmd *exec.Cmd, opts ...ProcessOption) *Process {
	p := &Process{
		ID:   uuid.New().String(),
		Dir:  cmd.Dir,
		cmd:  cmd,
		done: make(chan struct{}),
	}
	p.state.Store(int32(StateCreated))
	p.exitCode.Store(-1) // -1 indicates not exited
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current process state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// ExitCode returns the process exit code, or -1 if it has not exited.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// Done returns a channel that is closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// IsRunning returns true if the process is currently running.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// HasExited returns true if the process has exited or been killed.
func (p *Process) HasExited() bool {
	state := p.State()
	return state == StateExited || state == StateKilled
}

// PID returns the process ID, or -1 if not started.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}

// Start launches the process and begins tracking it.
func (p *Process) Start() error {
	if p.State() != StateCreated {
		return ErrProcessAlreadyStarted
	}

	started := false
	if p.onLine != nil && p.usePTY {
		ptmx, err := startWithPTY(p.cmd)
		if err == nil {
			p.console = ptmx
			started = true
		}
		// No pty available: fall through to pipes.
	}

	if !started {
		if p.onLine != nil {
			pr, pw, err := os.Pipe()
			if err != nil {
				return fmt.Errorf("console pipe: %w", err)
			}
			p.cmd.Stdin = nil
			p.cmd.Stdout = pw
			p.cmd.Stderr = pw
			setProcAttr(p.cmd)
			if err := p.cmd.Start(); err != nil {
				pr.Close()
				pw.Close()
				return fmt.Errorf("start process: %w", err)
			}
			// The child holds its own copy of the write end.
			pw.Close()
			p.console = pr
		} else {
			setProcAttr(p.cmd)
			if err := p.cmd.Start(); err != nil {
				return fmt.Errorf("start process: %w", err)
			}
		}
	}

	p.Started = time.Now()
	p.state.Store(int32(StateRunning))

	if p.console != nil {
		go p.streamLoop()
	}
	go p.waitLoop()

	return nil
}

// Signal sends a signal to the process itself (not its group).
func (p *Process) Signal(sig os.Signal) error {
	if p.cmd.Process == nil {
		return ErrProcessNotStarted
	}
	return p.cmd.Process.Signal(sig)
}

// Kill forcefully terminates the process tree.
// Callers on the shutdown path ignore the returned error; the process may
// already be gone.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return ErrProcessNotStarted
	}
	return killTree(p.cmd.Process)
}

// Terminate asks the process tree to exit. On platforms without a terminate
// signal this is the same as Kill.
func (p *Process) Terminate() error {
	if p.cmd.Process == nil {
		return ErrProcessNotStarted
	}
	return terminateTree(p.cmd.Process)
}

// Stop terminates gracefully: Terminate, wait up to grace, then Kill.
// Returns once the process has exited or the escalation has run its course.
func (p *Process) Stop(grace time.Duration) {
	if !p.IsRunning() {
		return
	}

	_ = p.Terminate()
	select {
	case <-p.done:
		return
	case <-time.After(grace):
	}

	_ = p.Kill()
	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		// Give up waiting; the kill was delivered.
	}
}

// Runtime returns how long the process has been running, or its total
// runtime after exit.
func (p *Process) Runtime() time.Duration {
	if p.Started.IsZero() {
		return 0
	}
	if end := p.ended.Load(); end != 0 {
		return time.Unix(0, end).Sub(p.Started)
	}
	return time.Since(p.Started)
}

// waitLoop waits for the process to exit and updates state.
func (p *Process) waitLoop() {
	err := p.cmd.Wait()

	exitCode := 0
	state := StateExited

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
				if status.Signaled() {
					state = StateKilled
				}
			}
		} else {
			exitCode = -1
		}
	}

	p.exitCode.Store(int32(exitCode))
	p.ended.Store(time.Now().UnixNano())
	p.state.Store(int32(state))
	close(p.done)
}
