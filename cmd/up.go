package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"tunnelctl/internal/app"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// upOptions holds the flags of the up command.
type upOptions struct {
	port         int
	tunnels      []string
	configPath   string
	timeout      time.Duration
	noPortCheck  bool
	waitPortFree bool
	logDir       string
	debug        bool
	noTUI        bool
	copy         bool
	metricsAddr  string
}

// isTerminal reports whether stdout is an interactive terminal. For mocking in tests.
var isTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runApplication builds and runs the application. For mocking in tests.
var runApplication = func(ctx context.Context, cfg *app.Config) error {
	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run(ctx)
}

func newUpCmd() *cobra.Command {
	opts := &upOptions{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Open tunnels to a local port and print their public URLs",
		Long: `Starts every configured tunnel provider for the local port and waits until
each has printed its public URL, or until the discovery timeout passes.

Tunnels come from the layered configuration (~/.config/tunnelctl/config.yaml,
then ./.tunnelctl/config.yaml) or from a single file given with --config.
--tunnel selects configured tunnels or built-in presets by name; see
'tunnelctl presets'.

By default each provider is only started once the local port accepts
connections, so tunnelctl can be launched right before the service.

It can run in two modes:

1. Interactive TUI Mode (default on a terminal):
   - Shows a spinner per tunnel until its URL has been discovered.
   - y copies the URLs to the clipboard, q stops all tunnels and exits.

2. Non-TUI / CLI Mode (using --no-tui flag):
   - Prints the URL table once discovery has finished.
   - Tunnels stay open until tunnelctl is interrupted (e.g., Ctrl+C).`,
		Example: `  tunnelctl up --port 7860 --tunnel cloudflared --tunnel localhost.run
  tunnelctl up --config tunnels.yaml --no-tui --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runApplication(ctx, opts.appConfig())
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.port, "port", "p", 0, "Local port to expose (default from config, 7860)")
	flags.StringArrayVarP(&opts.tunnels, "tunnel", "t", nil, "Tunnel or preset to start, may be repeated (default: all configured tunnels)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Load configuration from this file only")
	flags.DurationVar(&opts.timeout, "timeout", 0, "How long to wait for all URLs (default from config, 60s)")
	flags.BoolVar(&opts.noPortCheck, "no-port-check", false, "Start providers without waiting for the local port")
	flags.BoolVar(&opts.waitPortFree, "wait-port-free", false, "Wait until the local port is free instead of bound")
	flags.StringVar(&opts.logDir, "log-dir", "", "Directory for the per-tunnel log files (default: current directory)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging, including raw provider output")
	flags.BoolVar(&opts.noTUI, "no-tui", false, "Disable TUI and print the URLs instead")
	flags.BoolVar(&opts.copy, "copy", false, "Copy the discovered URLs to the clipboard (CLI mode)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9464")

	return cmd
}

func (o *upOptions) appConfig() *app.Config {
	cfg := app.NewConfig(o.noTUI || !isTerminal(), o.debug)
	cfg.ConfigPath = o.configPath
	cfg.Tunnels = o.tunnels
	cfg.Port = o.port
	cfg.Timeout = o.timeout
	cfg.NoPortCheck = o.noPortCheck
	cfg.WaitPortFree = o.waitPortFree
	cfg.LogDir = o.logDir
	cfg.Copy = o.copy
	cfg.MetricsAddr = o.metricsAddr
	return cfg
}
