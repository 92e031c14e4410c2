//go:build !windows

package supervisor

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// groupKill signals the whole process group so that grandchildren started
// by shells or script runners die with the child.
type groupKill struct {
	cmd *exec.Cmd
}

func prepareTerminator(cmd *exec.Cmd) terminator {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return groupKill{cmd: cmd}
}

func (k groupKill) terminate() error {
	if k.cmd.Process == nil {
		return nil
	}
	pid := k.cmd.Process.Pid
	err := syscall.Kill(-pid, syscall.SIGKILL)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, syscall.ESRCH):
		return os.ErrProcessDone
	default:
		return directKill(k).terminate()
	}
}
