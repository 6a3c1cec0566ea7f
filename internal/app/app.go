// Package app provides the main application structure and coordination
// for the ScribeView launcher. It wires together configuration, logging,
// the backend supervisor, the shell window, and the capability plugins,
// and manages the application lifecycle.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"

	"github.com/scribeview/desktop/internal/backend"
	"github.com/scribeview/desktop/internal/config"
	"github.com/scribeview/desktop/internal/history"
	"github.com/scribeview/desktop/internal/logging"
	"github.com/scribeview/desktop/internal/script"
	"github.com/scribeview/desktop/internal/shell"
	"github.com/scribeview/desktop/internal/shell/plugin"
)

// historyKeep is the number of launch records retained across runs.
const historyKeep = 200

// Application is the central coordinator for the launcher components.
// It owns startup order and the reverse-order shutdown.
type Application struct {
	mu sync.RWMutex

	// Core infrastructure
	cfg config.Config
	log *logging.Logger

	// Backend process management
	slot       *backend.Slot
	supervisor *backend.Supervisor
	proc       *backend.Process

	// Shell window
	host shell.Host
	hook *shell.LifecycleHook

	// Capability plugins
	plugins *plugin.Registry
	dialogs *plugin.Dialog
	files   *plugin.Filesystem
	opener  *plugin.ShellExec
	web     *plugin.HTTPClient

	// Supporting services
	store   *history.Store
	engine  *script.Engine
	watcher *config.FileWatcher

	// State
	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	exitSeen chan struct{}
	stopOnce sync.Once

	// Options
	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses the
	// default search order; a non-empty path must exist and parse.
	ConfigPath string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// Debug forces debug-level logging.
	Debug bool

	// NoBackend skips launching the backend process.
	NoBackend bool

	// Host is the shell window implementation. Nil selects the desktop
	// window; tests inject a stub.
	Host shell.Host

	// Version is shown in the window title and logs.
	Version string
}

// New creates a new Application with the given options. Most component
// failures degrade the launcher rather than abort it; only an explicitly
// requested configuration file that cannot be used is fatal.
func New(opts Options) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		opts:     opts,
		slot:     &backend.Slot{},
		ctx:      ctx,
		cancel:   cancel,
		exitSeen: make(chan struct{}, 1),
	}

	if err := app.bootstrap(); err != nil {
		cancel()
		return nil, err
	}

	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Configuration
	path := app.opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	} else if _, err := os.Stat(path); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	cfg, loadErr := config.NewLoader(path).Load()
	if loadErr != nil && app.opts.ConfigPath != "" {
		return &InitError{Component: "config", Err: loadErr}
	}
	config.ApplyEnv(&cfg)
	app.cfg = cfg

	// 2. Logging
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(app.cfg.Logging.Level)
	logCfg.File = app.cfg.Logging.File
	if app.opts.LogLevel != "" {
		logCfg.Level = logging.ParseLevel(app.opts.LogLevel)
	}
	if app.opts.Debug {
		logCfg.Level = logging.LevelDebug
	}
	app.log = logging.New(logCfg)
	logging.SetDefault(app.log)

	if loadErr != nil {
		app.log.Warn("config %s unusable, running on defaults: %v", path, loadErr)
	}
	if err := app.cfg.Validate(); err != nil {
		app.log.Warn("config %s invalid, running on defaults: %v", path, err)
		app.cfg = config.Default()
	}

	// 3. Config watcher, live log level only. A level given on the command
	// line stays fixed.
	if app.opts.LogLevel == "" && !app.opts.Debug {
		if _, err := os.Stat(path); err == nil {
			w, err := config.WatchFile(path, app.reloadLogLevel(path),
				config.WithErrorHandler(func(err error) {
					app.log.Warn("config watch: %v", err)
				}))
			if err != nil {
				app.log.Warn("config watch unavailable: %v", err)
			} else {
				app.watcher = w
			}
		}
	}

	// 4. Init script. A missing file is silence, not an error.
	if sp := app.cfg.Script.Path; sp != "" {
		if _, err := os.Stat(sp); err == nil {
			eng := script.NewEngine(script.WithLogger(app.log.WithComponent("script")))
			if err := eng.LoadFile(sp); err != nil {
				app.log.Warn("init script %s: %v", sp, err)
			}
			setup := eng.Setup()
			app.cfg.Backend.Candidates = append(app.cfg.Backend.Candidates, setup.Candidates...)
			app.cfg.Backend.Strategies = append(app.cfg.Backend.Strategies, setup.Strategies...)
			app.engine = eng
		}
	}

	// 5. Launch history
	if app.cfg.History.Enabled {
		hp := app.cfg.History.Path
		if hp == "" {
			dp, err := history.DefaultPath()
			if err != nil {
				app.log.Warn("launch history unavailable: %v", err)
			}
			hp = dp
		}
		if hp != "" {
			store, err := history.Open(hp)
			if err != nil {
				app.log.Warn("launch history unavailable: %v", err)
			} else {
				app.store = store
				if err := store.Prune(historyKeep); err != nil {
					app.log.Warn("pruning launch history: %v", err)
				}
				if last, ok, err := store.Last(); err == nil && ok && last.Exited {
					app.log.Debug("previous backend run: %s via %s, exit code %d",
						last.Outcome, last.Strategy, last.ExitCode)
				}
			}
		}
	}

	// 6. Capability plugins that need no window
	app.web = plugin.NewHTTPClient(10 * time.Second)
	app.opener = plugin.NewShellExec()
	app.files = plugin.NewFilesystem()

	// 7. Backend supervisor
	supOpts := []backend.SupervisorOption{
		backend.WithLogger(app.log.WithComponent("backend")),
		backend.WithCandidates(app.cfg.Backend.ExpandCandidates(backend.ExecutableDir())),
		backend.WithEntryPoint(app.cfg.Backend.EntryPoint),
		backend.WithStrategies(backend.StrategiesFromConfig(
			app.cfg.Backend.Strategies,
			app.cfg.Backend.EntryPoint,
			app.cfg.Backend.Host,
			app.cfg.Backend.Port,
		)),
		backend.WithConsole(app.appendConsole, app.cfg.Console.PTY),
		backend.WithExitHandler(app.onBackendExit),
	}
	if app.store != nil {
		supOpts = append(supOpts, backend.WithRecorder(app.store))
	}
	if app.cfg.Backend.ReadyPath != "" {
		supOpts = append(supOpts,
			backend.WithReadyProbe(&backend.ReadyProbe{
				BaseURL: app.cfg.Backend.BaseURL(),
				Path:    app.cfg.Backend.ReadyPath,
				Client:  app.web.Client(),
			}),
			backend.WithReadyHandler(app.onBackendReady),
		)
	}
	app.supervisor = backend.NewSupervisor(app.slot, supOpts...)

	// 8. Shell window host
	var win fyne.Window
	if app.opts.Host != nil {
		app.host = app.opts.Host
	} else {
		fc := shell.DefaultFyneConfig()
		if app.opts.Version != "" {
			fc.Title = fc.Title + " " + app.opts.Version
		}
		if app.cfg.Console.Buffer > 0 {
			fc.ConsoleLines = app.cfg.Console.Buffer
		}
		fc.Actions = []shell.Action{
			{Label: "Open in Browser", Run: app.openBrowser},
			{Label: "Save Console Log", Run: app.saveConsoleLog},
		}
		fh := shell.NewFyneHost(fc)
		app.host = fh
		win = fh.Window()
	}

	// 9. Plugin registry. The dialog plugin reports itself unavailable
	// without a native window; the registry keeps going.
	app.dialogs = plugin.NewDialog(win)
	app.plugins = plugin.NewRegistry(plugin.WithLogger(app.log.WithComponent("plugin")))
	_ = app.plugins.RegisterAll(app.host, app.dialogs, app.files, app.opener, app.web)
	app.log.Debug("plugins ready: %s", strings.Join(app.plugins.Names(), ", "))

	// 10. Window lifecycle hook
	app.hook = shell.NewLifecycleHook(app.slot,
		shell.WithHookLogger(app.log.WithComponent("shell")),
		shell.WithKilledHandler(app.onBackendKilled),
	)
	app.host.OnDestroyed(app.hook.OnDestroyed)

	return nil
}

// reloadLogLevel returns the watcher handler that re-reads the config file
// and applies its log level.
func (app *Application) reloadLogLevel(path string) func() {
	return func() {
		cfg, err := config.NewLoader(path).Load()
		if err != nil {
			app.log.Warn("config reload: %v", err)
			return
		}
		level := logging.ParseLevel(cfg.Logging.Level)
		app.log.SetLevel(level)
		app.log.Debug("log level now %s", level)
	}
}

func (app *Application) appendConsole(line string) {
	app.host.AppendConsole(line)
}

func (app *Application) onBackendReady(info backend.Info) {
	label := strings.TrimSpace(info.Title + " " + info.Version)
	if label == "" {
		label = "backend"
	}
	if app.engine != nil {
		app.engine.Emit(script.EventReady, map[string]any{
			"title":   info.Title,
			"version": info.Version,
		})
	}
	app.setStatusLive(label + " ready")
}

func (app *Application) onBackendExit(p *backend.Process, exitCode int) {
	app.log.Info("backend exited with code %d after %s", exitCode, p.Runtime().Round(time.Millisecond))
	select {
	case app.exitSeen <- struct{}{}:
	default:
	}
	if app.engine != nil {
		app.engine.Emit(script.EventExited, map[string]any{
			"pid":  p.PID(),
			"code": exitCode,
		})
	}
	app.setStatusLive(fmt.Sprintf("backend exited (code %d)", exitCode))
}

func (app *Application) onBackendKilled(p *backend.Process) {
	if app.engine != nil {
		app.engine.Emit(script.EventDestroyed, map[string]any{
			"pid": p.PID(),
		})
	}
}

// setStatusLive updates the window status line while the window is still up.
func (app *Application) setStatusLive(text string) {
	if app.running.Load() {
		app.host.SetStatus(text)
	}
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the effective configuration.
func (app *Application) Config() config.Config {
	return app.cfg
}

// Host returns the shell window host.
func (app *Application) Host() shell.Host {
	return app.host
}

// BackendProcess returns the supervised backend process, or nil before a
// successful launch.
func (app *Application) BackendProcess() *backend.Process {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.proc
}

// History returns the launch history store, or nil when disabled or
// unavailable.
func (app *Application) History() *history.Store {
	return app.store
}

// Plugins returns the capability plugin registry.
func (app *Application) Plugins() *plugin.Registry {
	return app.plugins
}
