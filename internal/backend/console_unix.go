//go:build unix

package backend

import (
	"io"
	"os/exec"

	"github.com/creack/pty"
)

// startWithPTY launches cmd under a pseudo-terminal and returns the master
// side for reading. The pty places the child in its own session.
func startWithPTY(cmd *exec.Cmd) (io.ReadCloser, error) {
	return pty.Start(cmd)
}
