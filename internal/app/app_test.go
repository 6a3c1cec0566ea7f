package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scribeview/desktop/internal/backend"
	"github.com/scribeview/desktop/internal/history"
	"github.com/scribeview/desktop/internal/shell"
)

func writeLauncherConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "launcher.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeBackendDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.py"), []byte("app = object()\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

const quietConfig = `
[logging]
level = "error"

[history]
enabled = false
`

func TestNewWithStubHost(t *testing.T) {
	host := shell.NewStubHost()
	a, err := New(Options{
		ConfigPath: writeLauncherConfig(t, quietConfig),
		Host:       host,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	if a.Host() != host {
		t.Error("injected host not used")
	}
	if a.BackendProcess() != nil {
		t.Error("backend process before Run")
	}
	if a.Config().Backend.Port != 8000 {
		t.Errorf("default port = %d, want 8000", a.Config().Backend.Port)
	}
	if a.History() != nil {
		t.Error("history store created while disabled")
	}

	// Without a native window only the window-free plugins register.
	for _, name := range []string{"filesystem", "shellexec", "http"} {
		if _, ok := a.Plugins().Get(name); !ok {
			t.Errorf("plugin %q not registered", name)
		}
	}
	if _, ok := a.Plugins().Get("dialog"); ok {
		t.Error("dialog plugin registered without a window")
	}
}

func TestNewExplicitConfigMissing(t *testing.T) {
	_, err := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "nope.toml"),
		Host:       shell.NewStubHost(),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	var ierr *InitError
	if !errors.As(err, &ierr) || ierr.Component != "config" {
		t.Errorf("error = %v, want config InitError", err)
	}
}

func TestNewExplicitConfigUnparseable(t *testing.T) {
	_, err := New(Options{
		ConfigPath: writeLauncherConfig(t, "[backend\nport ="),
		Host:       shell.NewStubHost(),
	})
	if err == nil {
		t.Fatal("expected error for unparseable explicit config")
	}
}

func TestRunNoBackend(t *testing.T) {
	host := shell.NewStubHost()
	a, err := New(Options{
		ConfigPath: writeLauncherConfig(t, quietConfig),
		Host:       host,
		NoBackend:  true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	waitFor(t, "disabled status", func() bool {
		return host.Status() == "backend disabled"
	})
	if a.BackendProcess() != nil {
		t.Error("backend launched with NoBackend set")
	}

	host.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after window close")
	}
	if a.IsRunning() {
		t.Error("still running after Run returned")
	}
}

func TestRunWindowSurvivesBackendFailure(t *testing.T) {
	cfg := fmt.Sprintf(`
[logging]
level = "error"

[history]
enabled = false

[backend]
candidates = [%q]
`, filepath.Join(t.TempDir(), "missing"))

	host := shell.NewStubHost()
	a, err := New(Options{ConfigPath: writeLauncherConfig(t, cfg), Host: host})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	waitFor(t, "failure status", func() bool {
		return host.Status() == "backend unavailable, see console"
	})
	found := false
	for _, line := range host.ConsoleLines() {
		if line == "could not start backend server" {
			found = true
		}
	}
	if !found {
		t.Error("failure diagnostic missing from console")
	}

	host.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRunKillsBackendOnWindowClose(t *testing.T) {
	dir := writeBackendDir(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")
	cfg := fmt.Sprintf(`
[logging]
level = "error"

[history]
enabled = true
path = %q

[backend]
candidates = [%q]
ready_path = ""

[[backend.strategy]]
name = "sleeper"
command = "sh"
args = ["-c", "sleep 30"]
`, dbPath, dir)

	host := shell.NewStubHost()
	a, err := New(Options{ConfigPath: writeLauncherConfig(t, cfg), Host: host})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	waitFor(t, "backend launch", func() bool {
		return a.BackendProcess() != nil
	})
	proc := a.BackendProcess()
	if proc.Name != "sleeper" {
		t.Errorf("strategy = %q, want sleeper", proc.Name)
	}
	if proc.Dir != dir {
		t.Errorf("dir = %q, want %q", proc.Dir, dir)
	}
	if !proc.IsRunning() {
		t.Error("backend not running after launch")
	}

	host.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after window close")
	}

	select {
	case <-proc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("backend still alive after shutdown")
	}
	if proc.State() != backend.StateKilled {
		t.Errorf("state = %v, want killed", proc.State())
	}

	// The launch and the exit both made it into the history store.
	store, err := history.Open(dbPath)
	if err != nil {
		t.Fatalf("reopening history: %v", err)
	}
	defer store.Close()
	entries, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Strategy != "sleeper" || e.Outcome != backend.OutcomeStarted {
		t.Errorf("entry = %q/%q, want sleeper/started", e.Strategy, e.Outcome)
	}
	if !e.Exited {
		t.Error("exit not recorded before store closed")
	}
}

func TestRunScriptExtendsLaunch(t *testing.T) {
	dir := writeBackendDir(t)
	scriptDir := t.TempDir()
	marker := filepath.Join(scriptDir, "started.txt")
	initLua := fmt.Sprintf(`
launcher.add_candidate(%q)
launcher.add_strategy("sleeper", "sh", {"-c", "sleep 30"})
launcher.on("started", function(ev)
  local f = io.open(%q, "w")
  f:write(ev.strategy)
  f:close()
end)
`, dir, marker)
	scriptPath := filepath.Join(scriptDir, "init.lua")
	if err := os.WriteFile(scriptPath, []byte(initLua), 0o644); err != nil {
		t.Fatal(err)
	}

	// The configured strategy cannot start, so the launch falls through to
	// the script-added one in the script-added candidate.
	cfg := fmt.Sprintf(`
[logging]
level = "error"

[history]
enabled = false

[backend]
candidates = []
ready_path = ""

[[backend.strategy]]
name = "missing"
command = "scribeview-no-such-runner"

[script]
path = %q
`, scriptPath)

	host := shell.NewStubHost()
	a, err := New(Options{ConfigPath: writeLauncherConfig(t, cfg), Host: host})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	waitFor(t, "script-added strategy", func() bool {
		p := a.BackendProcess()
		return p != nil && p.Name == "sleeper"
	})
	waitFor(t, "started event", func() bool {
		data, err := os.ReadFile(marker)
		return err == nil && string(data) == "sleeper"
	})

	host.Close()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRunTwiceRejected(t *testing.T) {
	host := shell.NewStubHost()
	a, err := New(Options{
		ConfigPath: writeLauncherConfig(t, quietConfig),
		Host:       host,
		NoBackend:  true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- a.Run() }()
	waitFor(t, "running", a.IsRunning)

	if err := a.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run = %v, want ErrAlreadyRunning", err)
	}

	host.Close()
	<-done
}

func TestShutdownIdempotent(t *testing.T) {
	a, err := New(Options{
		ConfigPath: writeLauncherConfig(t, quietConfig),
		Host:       shell.NewStubHost(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.Shutdown()
	a.Shutdown()
}
