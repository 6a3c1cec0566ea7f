package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/scribeview/desktop/internal/shell"
)

// ErrOutsideRoot is returned for paths outside every allowed root.
var ErrOutsideRoot = errors.New("path outside allowed roots")

// Filesystem grants file access scoped to explicitly allowed directories.
// Roots are added up front or when the user picks one through a dialog.
type Filesystem struct {
	mu    sync.RWMutex
	roots []string
}

var _ Plugin = (*Filesystem)(nil)

// NewFilesystem creates the plugin with the given allowed roots.
func NewFilesystem(roots ...string) *Filesystem {
	f := &Filesystem{}
	for _, r := range roots {
		f.AllowRoot(r)
	}
	return f
}

// Name implements Plugin.
func (f *Filesystem) Name() string { return "filesystem" }

// Register implements Plugin.
func (f *Filesystem) Register(host shell.Host) error { return nil }

// AllowRoot adds a directory under which access is permitted.
func (f *Filesystem) AllowRoot(dir string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return
	}
	f.mu.Lock()
	f.roots = append(f.roots, abs)
	f.mu.Unlock()
}

// Roots returns the allowed roots.
func (f *Filesystem) Roots() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.roots...)
}

// resolve returns the absolute path if it falls under an allowed root.
func (f *Filesystem) resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	abs = filepath.Clean(abs)

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, root := range f.roots {
		if abs == root || strings.HasPrefix(abs, root+string(os.PathSeparator)) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%q: %w", path, ErrOutsideRoot)
}

// ReadFile reads a file under an allowed root.
func (f *Filesystem) ReadFile(path string) ([]byte, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

// WriteFile writes a file under an allowed root, creating parent
// directories as needed.
func (f *Filesystem) WriteFile(path string, data []byte) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return os.WriteFile(abs, data, 0o644)
}

// Entry describes one directory member.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64
}

// List returns the entries of a directory under an allowed root.
func (f *Filesystem) List(dir string) ([]Entry, error) {
	abs, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}

	members, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(members))
	for _, m := range members {
		e := Entry{Name: m.Name(), IsDir: m.IsDir()}
		if info, err := m.Info(); err == nil {
			e.Size = info.Size()
		}
		out = append(out, e)
	}
	return out, nil
}
