package app

import (
	"context"
	"fmt"
	"os"

	"tunnelctl/internal/color"
	"tunnelctl/internal/config"
	"tunnelctl/internal/tunnel"
	"tunnelctl/pkg/logging"
)

// Application is the main application structure that bootstraps and runs tunnelctl
type Application struct {
	config *Config
}

// NewApplication creates and initializes a new application instance
func NewApplication(cfg *Config) (*Application, error) {
	// Configure logging based on debug flag
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	// Initialize logging for CLI output (will be replaced for TUI mode).
	// stdout is reserved for the URL table.
	logging.InitForCLI(appLogLevel, os.Stderr)

	if !color.Setup(os.LookupEnv) {
		logging.Warn("Bootstrap", "Ignoring unknown %s value, expected dark or light", color.ThemeEnv)
	}

	tunnelctlCfg, err := loadConfig(cfg)
	if err != nil {
		return nil, err
	}

	if len(tunnelctlCfg.Tunnels) == 0 {
		logging.Error("Bootstrap", tunnel.ErrNoTunnels, "No tunnels configured; use --tunnel or add tunnels to a config file")
		return nil, tunnel.ErrNoTunnels
	}
	if err := tunnelctlCfg.Validate(); err != nil {
		logging.Error("Bootstrap", err, "Invalid tunnelctl configuration")
		return nil, err
	}

	cfg.TunnelctlConfig = &tunnelctlCfg
	return &Application{config: cfg}, nil
}

func loadConfig(cfg *Config) (config.TunnelctlConfig, error) {
	var tunnelctlCfg config.TunnelctlConfig
	var err error

	if cfg.ConfigPath != "" {
		tunnelctlCfg, err = config.LoadConfigFromPath(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load tunnelctl configuration from path: %s", cfg.ConfigPath)
			return tunnelctlCfg, fmt.Errorf("failed to load tunnelctl configuration from path %s: %w", cfg.ConfigPath, err)
		}
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		tunnelctlCfg, err = config.LoadConfig()
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load tunnelctl configuration")
			return tunnelctlCfg, fmt.Errorf("failed to load tunnelctl configuration: %w", err)
		}
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}

	tunnelctlCfg, err = config.SelectTunnels(tunnelctlCfg, cfg.Tunnels...)
	if err != nil {
		return tunnelctlCfg, err
	}
	return cfg.applyOverrides(tunnelctlCfg), nil
}

// Run executes the application in the appropriate mode
func (a *Application) Run(ctx context.Context) error {
	if a.config.NoTUI {
		return a.runCLIMode(ctx)
	}
	return a.runTUIMode(ctx)
}

// runCLIMode runs the application in non-interactive CLI mode
func (a *Application) runCLIMode(ctx context.Context) error {
	return runCLIMode(ctx, a.config)
}

// runTUIMode runs the application in interactive TUI mode
func (a *Application) runTUIMode(ctx context.Context) error {
	return runTUIMode(ctx, a.config)
}
