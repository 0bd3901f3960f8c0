package app

import (
	"time"

	"tunnelctl/internal/config"
	"tunnelctl/internal/tunnel"
)

// Config holds the application configuration
type Config struct {
	// UI mode
	NoTUI bool

	// Debug settings
	Debug bool

	// ConfigPath replaces the layered config files with a single file.
	ConfigPath string

	// Tunnels selects configured tunnels or built-in presets by name.
	Tunnels []string

	// Flag overrides; zero values keep the configured value.
	Port         int
	Timeout      time.Duration
	NoPortCheck  bool
	WaitPortFree bool
	LogDir       string

	// Copy puts the discovered URLs on the clipboard.
	Copy bool

	// MetricsAddr serves Prometheus metrics when set, e.g. ":9464".
	MetricsAddr string

	// Resolved configuration, set by NewApplication
	TunnelctlConfig *config.TunnelctlConfig
}

// NewConfig creates a new application configuration
func NewConfig(noTUI, debug bool) *Config {
	return &Config{
		NoTUI: noTUI,
		Debug: debug,
	}
}

// applyOverrides layers the command line flags over the loaded configuration.
func (c *Config) applyOverrides(base config.TunnelctlConfig) config.TunnelctlConfig {
	out := base
	if c.Port != 0 {
		out.Port = c.Port
	}
	if c.Timeout != 0 {
		out.Timeout = c.Timeout
	}
	if c.NoPortCheck {
		disabled := false
		out.CheckLocalPort = &disabled
	}
	if c.WaitPortFree {
		out.PortCondition = tunnel.WaitPortFree.String()
	}
	if c.LogDir != "" {
		out.LogDir = c.LogDir
	}
	if c.Debug {
		enabled := true
		out.Debug = &enabled
	}
	return out
}
