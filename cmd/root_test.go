package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersion(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "tunnelctl", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "tunnelctl version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())

	assert.Equal(t, "tunnelctl version 1.0.0\n", buf.String())
}

func TestVersionCommand(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()
	rootCmd.Version = "0.4.2"

	cmd := newVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "tunnelctl version 0.4.2\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, expected := range []string{"up", "presets", "version", "self-update"} {
		assert.True(t, found[expected], "expected subcommand %s to be registered", expected)
	}
}

func TestPresetsCommand(t *testing.T) {
	cmd := newPresetsCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, name := range []string{"NAME", "cloudflared", "localhost.run", "serveo", "bore", "ngrok"} {
		assert.Contains(t, output, name)
	}
	assert.Contains(t, output, "cloudflared tunnel --url http://localhost:{port}")
	assert.Less(t, strings.Index(output, "bore"), strings.Index(output, "ngrok"), "presets are sorted by name")
}
