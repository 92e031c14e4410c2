package supervisor

import "os/exec"

// terminator force-kills a spawned process. The strategy is picked when the
// command is prepared, before Start.
type terminator interface {
	terminate() error
}

// directKill signals only the child itself.
type directKill struct {
	cmd *exec.Cmd
}

func (k directKill) terminate() error {
	if k.cmd.Process == nil {
		return nil
	}
	return k.cmd.Process.Kill()
}
