package backend

import (
	"os"
	"path/filepath"
)

// ExecutableDir returns the directory of the running executable, or an
// empty string when the lookup fails. A failed lookup is not an error;
// candidates derived from it are simply skipped.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}

// Locate returns the first candidate directory containing the entry-point
// file. Candidates that do not exist or cannot be read are skipped.
func Locate(candidates []string, entryPoint string) (string, bool) {
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, entryPoint))
		if err != nil || info.IsDir() {
			continue
		}
		return dir, true
	}
	return "", false
}
