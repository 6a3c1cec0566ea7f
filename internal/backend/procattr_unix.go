//go:build unix

package backend

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcAttr places the child in its own process group so signals can
// target the whole tree.
func setProcAttr(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// killTree sends SIGKILL to the process group, falling back to the process
// itself if the group signal fails.
func killTree(proc *os.Process) error {
	if err := syscall.Kill(-proc.Pid, syscall.SIGKILL); err != nil {
		return proc.Kill()
	}
	return nil
}

// terminateTree sends SIGTERM to the process group, falling back to the
// process itself if the group signal fails.
func terminateTree(proc *os.Process) error {
	if err := syscall.Kill(-proc.Pid, syscall.SIGTERM); err != nil {
		return proc.Signal(syscall.SIGTERM)
	}
	return nil
}
