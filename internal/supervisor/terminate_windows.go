//go:build windows

package supervisor

import (
	"os/exec"

	"github.com/shirou/gopsutil/v3/process"
)

// treeKill kills the child's descendants, then the child. Windows has no
// process groups to signal.
type treeKill struct {
	cmd *exec.Cmd
}

func prepareTerminator(cmd *exec.Cmd) terminator {
	return treeKill{cmd: cmd}
}

func (k treeKill) terminate() error {
	if k.cmd.Process == nil {
		return nil
	}
	if p, err := process.NewProcess(int32(k.cmd.Process.Pid)); err == nil {
		killDescendants(p)
	}
	return directKill(k).terminate()
}

func killDescendants(p *process.Process) {
	children, err := p.Children()
	if err != nil {
		return
	}
	for _, child := range children {
		killDescendants(child)
		_ = child.Kill()
	}
}
