package backend

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/scribeview/desktop/internal/config"
	"github.com/scribeview/desktop/internal/logging"
)

// Launch attempt outcomes recorded in history.
const (
	OutcomeStarted = "started"
	OutcomeFailed  = "failed"
	OutcomeNone    = "none"
)

// LaunchRecord describes one launch attempt.
type LaunchRecord struct {
	ID        string
	StartedAt time.Time
	Dir       string
	Strategy  string
	PID       int
	Outcome   string
}

// LaunchRecorder persists launch attempts and exits. Implementations must
// be safe for concurrent use; the exit observer runs on its own goroutine.
type LaunchRecorder interface {
	RecordLaunch(rec LaunchRecord) error
	RecordExit(id string, exitCode int, endedAt time.Time) error
}

// Supervisor locates the backend directory and starts the backend process.
//
// It runs once, synchronously, during application startup: probe the
// candidate directories for the entry point, try the launch strategies in
// order on the first hit, and store the resulting handle in the injected
// Slot. No retry happens beyond the strategy fallback, and no failure here
// is fatal to the application.
type Supervisor struct {
	slot       *Slot
	candidates []string
	entryPoint string
	strategies []Strategy
	log        *logging.Logger

	consoleHandler LineHandler
	consolePTY     bool

	recorder LaunchRecorder
	probe    *ReadyProbe

	onExit  func(p *Process, exitCode int)
	onReady func(info Info)
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithCandidates sets the candidate directories probed for the entry point,
// in priority order.
func WithCandidates(dirs []string) SupervisorOption {
	return func(s *Supervisor) {
		s.candidates = dirs
	}
}

// WithEntryPoint sets the file whose presence marks a valid candidate.
func WithEntryPoint(name string) SupervisorOption {
	return func(s *Supervisor) {
		s.entryPoint = name
	}
}

// WithStrategies sets the ordered launch strategies.
func WithStrategies(list []Strategy) SupervisorOption {
	return func(s *Supervisor) {
		s.strategies = list
	}
}

// WithLogger sets the supervisor's logger.
func WithLogger(log *logging.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if log != nil {
			s.log = log
		}
	}
}

// WithConsole streams backend output lines to fn, optionally under a pty.
func WithConsole(fn LineHandler, pty bool) SupervisorOption {
	return func(s *Supervisor) {
		s.consoleHandler = fn
		s.consolePTY = pty
	}
}

// WithRecorder persists launch attempts to the given recorder.
func WithRecorder(r LaunchRecorder) SupervisorOption {
	return func(s *Supervisor) {
		s.recorder = r
	}
}

// WithReadyProbe enables the post-launch readiness poll.
func WithReadyProbe(p *ReadyProbe) SupervisorOption {
	return func(s *Supervisor) {
		s.probe = p
	}
}

// WithExitHandler is called from the exit observer when the backend exits
// on its own or is killed.
func WithExitHandler(fn func(p *Process, exitCode int)) SupervisorOption {
	return func(s *Supervisor) {
		s.onExit = fn
	}
}

// WithReadyHandler is called when the readiness probe succeeds.
func WithReadyHandler(fn func(info Info)) SupervisorOption {
	return func(s *Supervisor) {
		s.onReady = fn
	}
}

// NewSupervisor creates a Supervisor bound to the given slot. Without
// options it probes the standard packaging layouts for main.py and launches
// with uv, falling back to python.
func NewSupervisor(slot *Slot, opts ...SupervisorOption) *Supervisor {
	def := config.Default().Backend
	s := &Supervisor{
		slot:       slot,
		candidates: def.ExpandCandidates(ExecutableDir()),
		entryPoint: def.EntryPoint,
		strategies: StrategiesFromConfig(def.Strategies, def.EntryPoint, def.Host, def.Port),
		log:        logging.Null,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locate returns the backend directory the supervisor would launch from.
func (s *Supervisor) Locate() (string, bool) {
	return Locate(s.candidates, s.entryPoint)
}

// Start runs the launch algorithm once and returns the live handle, or nil
// when no candidate directory could produce a running backend. Total
// failure emits exactly one diagnostic; individual fallbacks stay quiet.
func (s *Supervisor) Start() *Process {
	dir, ok := s.Locate()
	if !ok {
		s.log.Warn("could not start backend server")
		s.record(LaunchRecord{ID: uuid.New().String(), StartedAt: time.Now(), Outcome: OutcomeNone})
		return nil
	}

	for _, strat := range s.strategies {
		proc := s.launch(strat, dir)
		if proc == nil {
			continue
		}

		if err := s.slot.Store(proc); err != nil {
			// The destroy event already consumed the slot; don't leak the
			// process we just started.
			_ = proc.Kill()
			s.log.Warn("backend started after shutdown: %v", err)
			return nil
		}

		s.log.Info("backend started with %s at %s", strat.Name, dir)
		s.record(LaunchRecord{
			ID:        proc.ID,
			StartedAt: proc.Started,
			Dir:       dir,
			Strategy:  strat.Name,
			PID:       proc.PID(),
			Outcome:   OutcomeStarted,
		})
		go s.observeExit(proc)
		return proc
	}

	s.log.Warn("could not start backend server")
	return nil
}

// launch tries a single strategy. A failed spawn is recorded and absorbed.
func (s *Supervisor) launch(strat Strategy, dir string) *Process {
	cmd := strat.Build(dir)

	opts := []ProcessOption{WithName(strat.Name)}
	if s.consoleHandler != nil {
		opts = append(opts, WithLineHandler(s.consoleHandler))
		if s.consolePTY {
			opts = append(opts, WithPTY())
		}
	}

	proc := NewProcess(cmd, opts...)
	if err := proc.Start(); err != nil {
		s.log.Debug("launch with %s failed: %v", strat.Name, err)
		s.record(LaunchRecord{
			ID:        proc.ID,
			StartedAt: time.Now(),
			Dir:       dir,
			Strategy:  strat.Name,
			PID:       -1,
			Outcome:   OutcomeFailed,
		})
		return nil
	}
	return proc
}

// WaitReady polls the backend until it answers HTTP or the probe gives up.
// Failures are logged and absorbed.
func (s *Supervisor) WaitReady(ctx context.Context, proc *Process) {
	if s.probe == nil || proc == nil {
		return
	}

	info, err := s.probe.Wait(ctx)
	if err != nil {
		s.log.Warn("backend readiness probe gave up: %v", err)
		return
	}

	if info.Title != "" {
		s.log.Info("backend ready: %s %s", info.Title, info.Version)
	} else {
		s.log.Info("backend ready")
	}
	if s.onReady != nil {
		s.onReady(info)
	}
}

// observeExit watches for the backend exiting. It records the exit but
// never clears the slot; only the lifecycle hook owns that transition.
func (s *Supervisor) observeExit(proc *Process) {
	<-proc.Done()

	code := proc.ExitCode()
	if proc.State() == StateKilled {
		s.log.Debug("backend process %d killed", proc.PID())
	} else {
		s.log.Info("backend process %d exited with code %d", proc.PID(), code)
	}

	if s.recorder != nil {
		if err := s.recorder.RecordExit(proc.ID, code, time.Now()); err != nil {
			s.log.Warn("recording backend exit: %v", err)
		}
	}
	if s.onExit != nil {
		s.onExit(proc, code)
	}
}

// record persists one launch attempt, absorbing recorder failures.
func (s *Supervisor) record(rec LaunchRecord) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordLaunch(rec); err != nil {
		s.log.Warn("recording launch attempt: %v", err)
	}
}
