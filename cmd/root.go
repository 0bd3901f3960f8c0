package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tunnelctl",
	Short: "Expose a local port through public tunnel providers",
	Long: `tunnelctl runs one or more tunnel provider CLIs (cloudflared, ssh based
services, bore, ngrok, ...) against a local port, picks the public URL out of
each provider's output and shows them together once they are all up.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid configuration, failed tunnels)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "tunnelctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
