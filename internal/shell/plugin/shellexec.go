package plugin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"sync"

	"github.com/scribeview/desktop/internal/shell"
)

// ErrCommandNotAllowed is returned for commands outside the allow-list.
var ErrCommandNotAllowed = errors.New("command not allowed")

// ShellExec opens URLs with the platform opener and runs allow-listed
// commands. Anything not explicitly allowed is refused.
type ShellExec struct {
	mu      sync.RWMutex
	allowed map[string]bool
}

var _ Plugin = (*ShellExec)(nil)

// NewShellExec creates the plugin with the given allowed command names.
func NewShellExec(allowed ...string) *ShellExec {
	s := &ShellExec{allowed: make(map[string]bool, len(allowed))}
	for _, name := range allowed {
		s.allowed[name] = true
	}
	return s
}

// Name implements Plugin.
func (s *ShellExec) Name() string { return "shellexec" }

// Register implements Plugin.
func (s *ShellExec) Register(host shell.Host) error { return nil }

// Allow adds a command to the allow-list.
func (s *ShellExec) Allow(name string) {
	s.mu.Lock()
	s.allowed[name] = true
	s.mu.Unlock()
}

// OpenURL opens an http(s) URL with the platform opener. The opener is
// started and not awaited.
func (s *ShellExec) OpenURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q scheme", u.Scheme)
	}

	name, args, err := openerCommand(runtime.GOOS)
	if err != nil {
		return err
	}

	cmd := exec.Command(name, append(args, u.String())...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start opener: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// openerCommand returns the platform URL opener.
func openerCommand(goos string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", nil, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", nil, nil
	default:
		return "", nil, fmt.Errorf("no opener for %s", goos)
	}
}

// Run executes an allow-listed command and returns its combined output.
func (s *ShellExec) Run(ctx context.Context, name string, args ...string) (string, error) {
	s.mu.RLock()
	ok := s.allowed[name]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrCommandNotAllowed)
	}

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("run %s: %w", name, err)
	}
	return string(out), nil
}
