//go:build windows

package backend

import (
	"errors"
	"io"
	"os/exec"
)

// startWithPTY is unsupported on Windows; callers fall back to pipes.
func startWithPTY(_ *exec.Cmd) (io.ReadCloser, error) {
	return nil, errors.New("pty not supported on windows")
}
