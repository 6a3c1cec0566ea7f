package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/scribeview/desktop/internal/script"
)

// Run launches the backend and shows the shell window. It blocks until the
// window closes, then shuts the launcher down.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.log.Info("scribeview %s starting", app.version())
	app.startBackend()
	app.host.ShowAndRun()
	app.Shutdown()
	return nil
}

// startBackend asks the supervisor for a backend process and wires the
// outcome into the window. Failure leaves the window usable.
func (app *Application) startBackend() {
	if app.opts.NoBackend || app.cfg.Backend.Disabled {
		app.log.Info("backend launch disabled")
		app.host.SetStatus("backend disabled")
		return
	}

	app.host.SetStatus("starting backend")
	proc := app.supervisor.Start()
	if proc == nil {
		app.host.SetStatus("backend unavailable, see console")
		app.host.AppendConsole("could not start backend server")
		return
	}

	app.mu.Lock()
	app.proc = proc
	app.mu.Unlock()

	app.host.SetStatus(fmt.Sprintf("backend %s (pid %d)", proc.Name, proc.PID()))
	if app.engine != nil {
		app.engine.Emit(script.EventStarted, map[string]any{
			"strategy": proc.Name,
			"dir":      proc.Dir,
			"pid":      proc.PID(),
		})
	}

	go app.supervisor.WaitReady(app.ctx, proc)
}

// Shutdown tears the launcher down in reverse initialization order. It is
// safe to call more than once and from any goroutine.
func (app *Application) Shutdown() {
	app.stopOnce.Do(func() {
		app.cancel()

		// The window host may already be gone; the hook tolerates every
		// close path.
		if app.hook != nil {
			app.hook.OnDestroyed()
		}

		// Let the exit observer finish recording before the store closes.
		app.mu.RLock()
		proc := app.proc
		app.mu.RUnlock()
		if proc != nil {
			select {
			case <-app.exitSeen:
			case <-time.After(2 * time.Second):
			}
		}

		if app.watcher != nil {
			_ = app.watcher.Close()
		}
		if app.engine != nil {
			app.engine.Close()
		}
		if app.store != nil {
			_ = app.store.Close()
		}
		app.log.Info("scribeview stopped")
	})
}

// openBrowser opens the backend's base URL in the system browser.
func (app *Application) openBrowser() {
	url := app.cfg.Backend.BaseURL()
	if err := app.opener.OpenURL(url); err != nil {
		app.log.Warn("open %s: %v", url, err)
	}
}

// saveConsoleLog writes the console buffer to a user-chosen file.
func (app *Application) saveConsoleLog() {
	if _, ok := app.plugins.Get("dialog"); !ok {
		app.log.Warn("save console log: dialog plugin unavailable")
		return
	}
	app.dialogs.SaveFile("scribeview-console.log", func(path string, err error) {
		if err != nil {
			app.dialogs.ShowError(err)
			return
		}
		if path == "" {
			return
		}
		app.files.AllowRoot(filepath.Dir(path))
		if err := app.files.WriteFile(path, []byte(app.host.ConsoleText())); err != nil {
			app.dialogs.ShowError(err)
			return
		}
		app.dialogs.ShowInfo("Console log saved", path)
	})
}

func (app *Application) version() string {
	if app.opts.Version == "" {
		return "dev"
	}
	return app.opts.Version
}
