package config

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// fakeFS is an in-memory FileSystem for loader tests.
type fakeFS struct {
	files map[string][]byte
	errs  map[string]error
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		files: make(map[string][]byte),
		errs:  make(map[string]error),
	}
}

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	data, ok := f.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (f *fakeFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := f.files[path]; !ok {
		return nil, fs.ErrNotExist
	}
	return fakeFileInfo{name: path}, nil
}

type fakeFileInfo struct{ name string }

func (fi fakeFileInfo) Name() string       { return fi.name }
func (fi fakeFileInfo) Size() int64        { return 0 }
func (fi fakeFileInfo) Mode() fs.FileMode  { return 0o644 }
func (fi fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (fi fakeFileInfo) IsDir() bool        { return false }
func (fi fakeFileInfo) Sys() any           { return nil }

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	l := NewLoaderWithFS(newFakeFS(), "launcher.toml")

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if cfg.Backend.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Backend.Port)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	l := NewLoaderWithFS(newFakeFS(), "")

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("empty path should not be an error, got %v", err)
	}
	if cfg.Backend.EntryPoint != "main.py" {
		t.Errorf("expected default entry point, got %q", cfg.Backend.EntryPoint)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	fsys := newFakeFS()
	fsys.files["launcher.toml"] = []byte(`
[backend]
port = 9001
entry_point = "app.py"

[logging]
level = "debug"
`)
	l := NewLoaderWithFS(fsys, "launcher.toml")

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Port != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.Backend.Port)
	}
	if cfg.Backend.EntryPoint != "app.py" {
		t.Errorf("expected entry point app.py, got %q", cfg.Backend.EntryPoint)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Backend.Host != "127.0.0.1" {
		t.Errorf("expected default host, got %q", cfg.Backend.Host)
	}
	if len(cfg.Backend.Strategies) != 2 {
		t.Errorf("expected default strategies preserved, got %d", len(cfg.Backend.Strategies))
	}
}

func TestLoadReplacesStrategyList(t *testing.T) {
	fsys := newFakeFS()
	fsys.files["launcher.toml"] = []byte(`
[[backend.strategy]]
name = "poetry"
command = "poetry"
args = ["run", "uvicorn"]
`)
	l := NewLoaderWithFS(fsys, "launcher.toml")

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Backend.Strategies) != 1 {
		t.Fatalf("expected strategy list replaced, got %d entries", len(cfg.Backend.Strategies))
	}
	if cfg.Backend.Strategies[0].Name != "poetry" {
		t.Errorf("expected poetry strategy, got %q", cfg.Backend.Strategies[0].Name)
	}
}

func TestLoadParseError(t *testing.T) {
	fsys := newFakeFS()
	fsys.files["launcher.toml"] = []byte("[backend\nport = not-a-number")
	l := NewLoaderWithFS(fsys, "launcher.toml")

	_, err := l.Load()
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if perr.Path != "launcher.toml" {
		t.Errorf("expected path in parse error, got %q", perr.Path)
	}
	if !strings.Contains(perr.Error(), "launcher.toml") {
		t.Errorf("expected path in message, got %q", perr.Error())
	}
}

func TestLoadReadError(t *testing.T) {
	fsys := newFakeFS()
	fsys.errs["launcher.toml"] = errors.New("permission denied")
	l := NewLoaderWithFS(fsys, "launcher.toml")

	_, err := l.Load()
	if err == nil {
		t.Fatal("expected read error, got nil")
	}
	if !strings.Contains(err.Error(), "launcher.toml") {
		t.Errorf("expected path in error, got %q", err.Error())
	}
}

func TestLoadFromReader(t *testing.T) {
	l := NewLoader("")

	cfg, err := l.LoadFromReader(strings.NewReader(`
[backend]
host = "0.0.0.0"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %q", cfg.Backend.Host)
	}
}
