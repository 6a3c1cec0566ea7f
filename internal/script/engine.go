// Package script runs the optional Lua init script. The script can extend
// the backend search path, add launch strategies, and subscribe to launcher
// events. Script failures never stop the launcher; they are logged and
// absorbed.
package script

import (
	"errors"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/scribeview/desktop/internal/config"
	"github.com/scribeview/desktop/internal/logging"
)

// ErrEngineClosed is returned when using a closed engine.
var ErrEngineClosed = errors.New("script engine is closed")

// Event names delivered to launcher.on handlers.
type Event string

const (
	// EventStarted fires after the backend process starts.
	EventStarted Event = "started"
	// EventReady fires when the backend answers HTTP.
	EventReady Event = "ready"
	// EventExited fires when the backend process ends.
	EventExited Event = "exited"
	// EventDestroyed fires after the window-destroyed kill.
	EventDestroyed Event = "destroyed"
)

// Setup holds the configuration additions collected from the script.
// Additions extend the configured lists; they are probed and tried after
// the built-in entries.
type Setup struct {
	Candidates []string
	Strategies []config.StrategyConfig
}

type call struct {
	fn     func(L *lua.LState) error
	result chan error
}

// Engine owns a Lua state and serializes every operation on it through a
// single goroutine. The LState is not goroutine-safe; the queue is the only
// path to it.
type Engine struct {
	L   *lua.LState
	log *logging.Logger

	queue  chan *call
	done   chan struct{}
	closed atomic.Bool

	closeOnce sync.Once

	mu       sync.Mutex
	setup    Setup
	handlers map[Event][]*lua.LFunction
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log *logging.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates an engine and starts its worker goroutine.
// Callers must Close it.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		L:        lua.NewState(),
		log:      logging.Null,
		queue:    make(chan *call, 64),
		done:     make(chan struct{}),
		handlers: make(map[Event][]*lua.LFunction),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.register()
	go e.run()
	return e
}

// register installs the launcher table into the Lua state. Runs before the
// worker starts, so direct LState access is safe here.
func (e *Engine) register() {
	tbl := e.L.NewTable()
	e.L.SetField(tbl, "add_candidate", e.L.NewFunction(e.luaAddCandidate))
	e.L.SetField(tbl, "add_strategy", e.L.NewFunction(e.luaAddStrategy))
	e.L.SetField(tbl, "on", e.L.NewFunction(e.luaOn))
	e.L.SetField(tbl, "log", e.L.NewFunction(e.luaLog))
	e.L.SetGlobal("launcher", tbl)
}

func (e *Engine) luaAddCandidate(L *lua.LState) int {
	dir := L.CheckString(1)
	e.mu.Lock()
	e.setup.Candidates = append(e.setup.Candidates, dir)
	e.mu.Unlock()
	return 0
}

func (e *Engine) luaAddStrategy(L *lua.LState) int {
	name := L.CheckString(1)
	command := L.CheckString(2)

	var args []string
	if L.GetTop() >= 3 {
		L.CheckTable(3).ForEach(func(_, v lua.LValue) {
			args = append(args, lua.LVAsString(v))
		})
	}

	e.mu.Lock()
	e.setup.Strategies = append(e.setup.Strategies, config.StrategyConfig{
		Name:    name,
		Command: command,
		Args:    args,
	})
	e.mu.Unlock()
	return 0
}

func (e *Engine) luaOn(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	e.mu.Lock()
	e.handlers[Event(name)] = append(e.handlers[Event(name)], fn)
	e.mu.Unlock()
	return 0
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("script: %s", L.CheckString(1))
	return 0
}

// run is the worker loop. It owns the LState and closes it on exit.
func (e *Engine) run() {
	defer e.L.Close()
	for {
		select {
		case <-e.done:
			e.drain()
			return
		case c := <-e.queue:
			e.dispatch(c)
		}
	}
}

func (e *Engine) dispatch(c *call) {
	err := e.protect(c.fn)
	select {
	case c.result <- err:
	default:
	}
	close(c.result)
}

// protect runs one operation with panic recovery. gopher-lua raises Go
// panics for some API misuse; a broken script must not take the launcher
// down.
func (e *Engine) protect(fn func(L *lua.LState) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			case string:
				err = errors.New(v)
			default:
				err = errors.New("lua panic")
			}
		}
	}()
	return fn(e.L)
}

func (e *Engine) drain() {
	for {
		select {
		case c := <-e.queue:
			select {
			case c.result <- ErrEngineClosed:
			default:
			}
			close(c.result)
		default:
			return
		}
	}
}

// exec runs fn on the worker goroutine and waits for it.
func (e *Engine) exec(fn func(L *lua.LState) error) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	c := &call{fn: fn, result: make(chan error, 1)}
	select {
	case <-e.done:
		return ErrEngineClosed
	case e.queue <- c:
	}

	select {
	case err, ok := <-c.result:
		if !ok {
			return ErrEngineClosed
		}
		return err
	case <-e.done:
		return ErrEngineClosed
	}
}

// LoadFile runs the script at path. Config additions registered by the
// script are available from Setup afterwards.
func (e *Engine) LoadFile(path string) error {
	return e.exec(func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

// Setup returns the configuration additions collected so far.
func (e *Engine) Setup() Setup {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Setup{
		Candidates: append([]string(nil), e.setup.Candidates...),
		Strategies: append([]config.StrategyConfig(nil), e.setup.Strategies...),
	}
}

// Emit fires the handlers for an event without waiting for them. Handler
// errors are logged and absorbed. Fields become a table passed as the only
// handler argument.
func (e *Engine) Emit(event Event, fields map[string]any) {
	if e.closed.Load() {
		return
	}

	e.mu.Lock()
	handlers := append([]*lua.LFunction(nil), e.handlers[event]...)
	e.mu.Unlock()
	if len(handlers) == 0 {
		return
	}

	c := &call{
		fn: func(L *lua.LState) error {
			arg := L.NewTable()
			for k, v := range fields {
				L.SetField(arg, k, toLValue(L, v))
			}
			for _, fn := range handlers {
				L.Push(fn)
				L.Push(arg)
				if err := L.PCall(1, 0, nil); err != nil {
					e.log.Warn("script handler for %s failed: %v", event, err)
				}
			}
			return nil
		},
		result: make(chan error, 1),
	}

	select {
	case <-e.done:
	case e.queue <- c:
		go func() { <-c.result }()
	default:
		e.log.Warn("script queue full, dropping %s event", event)
	}
}

func toLValue(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case bool:
		return lua.LBool(val)
	default:
		return lua.LNil
	}
}

// Close stops the worker and releases the Lua state. Safe to call more
// than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.done)
	})
}
