//go:build windows

package tunnel

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommandQuotedExecutable(t *testing.T) {
	originalExecCommand := execCommand
	var name string
	execCommand = func(command string, args ...string) *exec.Cmd {
		name = command
		return &exec.Cmd{Path: command, Args: append([]string{command}, args...)}
	}
	t.Cleanup(func() { execCommand = originalExecCommand })

	command := `"C:\Program Files\bore\bore.exe" local 7860 --to bore.pub`
	cmd, err := buildCommand(command)
	require.NoError(t, err)
	assert.Equal(t, `C:\Program Files\bore\bore.exe`, name)
	assert.Equal(t, command, cmd.SysProcAttr.CmdLine)

	_, err = buildCommand(`cloudflared tunnel --url http://localhost:7860`)
	require.NoError(t, err)
	assert.Equal(t, "cloudflared", name)

	_, err = buildCommand("   ")
	assert.Error(t, err)
}
