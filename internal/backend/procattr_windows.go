//go:build windows

package backend

import (
	"os"
	"os/exec"
	"strconv"
)

// setProcAttr is a no-op on Windows; taskkill handles the tree.
func setProcAttr(_ *exec.Cmd) {}

// killTree terminates the process tree with taskkill.
func killTree(proc *os.Process) error {
	if err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(proc.Pid)).Run(); err != nil {
		return proc.Kill()
	}
	return nil
}

// terminateTree has no graceful equivalent on Windows.
func terminateTree(proc *os.Process) error {
	return killTree(proc)
}
