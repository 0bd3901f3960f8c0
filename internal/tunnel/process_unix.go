//go:build !windows

package tunnel

import (
	"fmt"
	"os/exec"
	"syscall"

	"github.com/google/shlex"
	"golang.org/x/sys/unix"
)

// buildCommand splits command with shell quoting rules and puts the child in
// its own process group so the whole tree can be signalled.
func buildCommand(command string) (*exec.Cmd, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	cmd := execCommand(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd, nil
}

func signalGraceful(p *process) error {
	if err := unix.Kill(-p.Pid(), unix.SIGTERM); err != nil {
		if err == unix.ESRCH {
			return nil
		}
		return err
	}
	return nil
}

func killTree(p *process) error {
	if err := unix.Kill(-p.Pid(), unix.SIGKILL); err != nil && err != unix.ESRCH {
		return err
	}
	return nil
}
