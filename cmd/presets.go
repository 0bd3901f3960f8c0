package cmd

import (
	"fmt"

	"tunnelctl/internal/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in tunnel presets",
		Long: `Lists the tunnel providers tunnelctl knows out of the box. Use their names
with 'tunnelctl up --tunnel <name>' or as 'preset: <name>' in a config file.
The provider CLI itself has to be installed separately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderPresets(config.Presets()))
			return nil
		},
	}
}

func renderPresets(presets []config.TunnelDefinition) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "COMMAND", "NOTE")
	for _, p := range presets {
		t.Row(p.Name, p.Command, p.Note)
	}
	return t.String()
}
