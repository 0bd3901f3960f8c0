//go:build windows

package tunnel

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// buildCommand hands the command line to CreateProcess unchanged. Only the
// executable is split off, with the same quoting rules the child uses. The
// child gets a new process group so it can receive CTRL_BREAK on its own.
func buildCommand(command string) (*exec.Cmd, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("empty command")
	}
	argv, err := windows.DecomposeCommandLine(command)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("empty command")
	}
	cmd := execCommand(argv[0])
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine:       command,
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
	}
	return cmd, nil
}

func signalGraceful(p *process) error {
	return windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(p.Pid()))
}

func killTree(p *process) error {
	if p.Exited() {
		return nil
	}
	return p.cmd.Process.Kill()
}
