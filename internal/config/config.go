package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExePlaceholder marks the executable directory in candidate entries.
const ExePlaceholder = "{exe}"

// FileName is the configuration file name looked up in the standard
// locations.
const FileName = "launcher.toml"

// DefaultPath returns the first existing launcher.toml among the working
// directory, the per-user config dir, and the executable's directory. When
// none exists the working-directory path is returned; loading a missing
// file yields the defaults.
func DefaultPath() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "scribeview", FileName))
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), FileName))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return candidates[0]
}

// Config is the root launcher configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Console ConsoleConfig `toml:"console"`
	Logging LoggingConfig `toml:"logging"`
	History HistoryConfig `toml:"history"`
	Script  ScriptConfig  `toml:"script"`
}

// BackendConfig controls how the backend process is located and launched.
type BackendConfig struct {
	// Disabled skips launching the backend entirely.
	Disabled bool `toml:"disabled"`

	// Candidates are the directories probed for the entry-point file, in
	// priority order. Entries may contain the {exe} placeholder.
	Candidates []string `toml:"candidates"`

	// EntryPoint is the file whose presence marks a candidate as valid.
	EntryPoint string `toml:"entry_point"`

	// Host and Port the backend is told to listen on.
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// ReadyPath is the HTTP path polled after launch. Empty disables the probe.
	ReadyPath string `toml:"ready_path"`

	// Strategies are the launch commands tried in order.
	Strategies []StrategyConfig `toml:"strategy"`
}

// StrategyConfig describes one way of launching the backend. The final
// command line is Command followed by Args followed by the server module and
// the host/port arguments.
type StrategyConfig struct {
	Name    string   `toml:"name"`
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// ConsoleConfig controls backend output capture.
type ConsoleConfig struct {
	// PTY runs the backend under a pseudo-terminal on unix so line-buffered
	// interpreters flush promptly. Ignored on Windows.
	PTY bool `toml:"pty"`

	// Buffer is the number of console lines retained in the shell view.
	Buffer int `toml:"buffer"`
}

// LoggingConfig controls launcher logging.
type LoggingConfig struct {
	Level string `toml:"level"`
	// File is the rotated log file path. Empty disables the file sink.
	File string `toml:"file"`
}

// HistoryConfig controls the launch history store.
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
	// Path of the SQLite database. Empty picks a per-user default.
	Path string `toml:"path"`
}

// ScriptConfig points at the optional init script.
type ScriptConfig struct {
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			Candidates: []string{
				"../backend",
				ExePlaceholder + "/../Resources/backend",
				ExePlaceholder + "/backend",
			},
			EntryPoint: "main.py",
			Host:       "127.0.0.1",
			Port:       8000,
			ReadyPath:  "/openapi.json",
			Strategies: []StrategyConfig{
				{Name: "uv", Command: "uv", Args: []string{"run", "uvicorn"}},
				{Name: "python", Command: "python", Args: []string{"-m", "uvicorn"}},
			},
		},
		Console: ConsoleConfig{
			PTY:    true,
			Buffer: 500,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Backend.EntryPoint == "" {
		return fmt.Errorf("backend.entry_point must not be empty")
	}
	if strings.ContainsRune(c.Backend.EntryPoint, os.PathSeparator) {
		return fmt.Errorf("backend.entry_point must be a bare file name, got %q", c.Backend.EntryPoint)
	}
	if c.Backend.Port < 1 || c.Backend.Port > 65535 {
		return fmt.Errorf("backend.port %d out of range", c.Backend.Port)
	}
	if c.Backend.Host == "" {
		return fmt.Errorf("backend.host must not be empty")
	}
	for i, s := range c.Backend.Strategies {
		if s.Command == "" {
			return fmt.Errorf("backend.strategy[%d]: command must not be empty", i)
		}
	}
	if c.Console.Buffer < 0 {
		return fmt.Errorf("console.buffer must not be negative")
	}
	return nil
}

// BaseURL returns the backend's HTTP base URL.
func (c *BackendConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// ExpandCandidates resolves the candidate list against the executable
// directory. Entries containing {exe} are expanded; the others are kept
// as written (relative entries resolve against the working directory at
// probe time). When exeDir is empty, placeholder entries are dropped,
// matching the rule that a failed executable lookup skips those layouts.
func (c *BackendConfig) ExpandCandidates(exeDir string) []string {
	out := make([]string, 0, len(c.Candidates))
	for _, cand := range c.Candidates {
		if strings.Contains(cand, ExePlaceholder) {
			if exeDir == "" {
				continue
			}
			cand = strings.ReplaceAll(cand, ExePlaceholder, exeDir)
			cand = filepath.Clean(cand)
		}
		out = append(out, cand)
	}
	return out
}
