package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"tunnelctl/internal/tui"
	"tunnelctl/internal/tunnel"
	"tunnelctl/pkg/logging"

	"github.com/atotto/clipboard"
	"golang.org/x/sync/errgroup"
)

// For mocking in tests
var stdout io.Writer = os.Stdout
var clipboardWriteAll = clipboard.WriteAll

// runCLIMode executes the non-interactive command line mode
func runCLIMode(ctx context.Context, config *Config) error {
	logging.Debug("CLI", "Running in no-TUI mode.")

	services, err := InitializeServices(config, logging.Default(), Hooks{})
	if err != nil {
		logging.Error("CLI", err, "Failed to initialize services")
		return err
	}

	return runWithSignals(ctx, config, services, func(ctx context.Context, t *tunnel.Tunnel) error {
		if err := t.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				logging.Info("CLI", "Interrupted before all URLs were discovered")
				return nil
			}
			return err
		}

		urls := t.URLs()
		fmt.Fprint(stdout, renderURLTable(urls))
		if config.Copy && len(urls) > 0 {
			if err := clipboardWriteAll(urlText(urls)); err != nil {
				logging.Warn("CLI", "Failed to copy URLs to clipboard: %v", err)
			} else {
				logging.Info("CLI", "Copied %d URL(s) to clipboard", len(urls))
			}
		}

		logging.Info("CLI", "Tunnels are open. Press Ctrl+C to stop all tunnels and exit.")
		<-ctx.Done()
		logging.Info("CLI", "--- Shutting down tunnels ---")
		return nil
	})
}

// runTUIMode executes the interactive terminal UI mode
func runTUIMode(ctx context.Context, config *Config) error {
	logging.Debug("CLI", "Starting TUI mode...")

	// Switch logging to channel-based system for TUI integration
	logLevel := logging.LevelInfo
	if config.Debug {
		logLevel = logging.LevelDebug
	}
	logChan := logging.InitForTUI(logLevel)

	bridge := tui.NewBridge(len(config.TunnelctlConfig.Tunnels))
	services, err := InitializeServices(config, logging.Default(), Hooks{
		OnURL:       bridge.URLCallback,
		OnPublished: bridge.Published,
	})
	if err != nil {
		logging.InitForCLI(logLevel, os.Stderr)
		logging.Error("TUI-Lifecycle", err, "Failed to initialize services")
		return err
	}

	p := tui.NewProgram(tui.Config{
		Port:    services.Tunnel.Port(),
		Specs:   services.Tunnel.Specs(),
		Debug:   config.Debug,
		Updates: bridge.Updates(),
		Copy:    clipboardWriteAll,
	}, logChan)

	return runWithSignals(ctx, config, services, func(ctx context.Context, _ *tunnel.Tunnel) error {
		go func() {
			<-ctx.Done()
			p.Quit()
		}()

		// Run the TUI until user exits
		if _, err := p.Run(); err != nil {
			logging.Error("TUI-Lifecycle", err, "Error running TUI program")
			return err
		}
		logging.Info("TUI-Lifecycle", "TUI exited.")
		return nil
	})
}

// runWithSignals runs fn inside a tunnel session next to the optional metrics
// server. Everything winds down on SIGINT/SIGTERM or when fn returns.
func runWithSignals(ctx context.Context, config *Config, services *Services, fn func(context.Context, *tunnel.Tunnel) error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if config.MetricsAddr != "" {
		ln, err := listenMetrics(config.MetricsAddr)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return serveMetrics(gctx, ln, services.Registry)
		})
	}

	g.Go(func() error {
		defer cancel()
		return services.Tunnel.Session(gctx, fn)
	})

	return g.Wait()
}
