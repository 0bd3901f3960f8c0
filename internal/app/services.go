package app

import (
	"fmt"

	"tunnelctl/internal/tunnel"
	"tunnelctl/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Services holds the tunnel session and its instrumentation
type Services struct {
	Tunnel   *tunnel.Tunnel
	Metrics  *tunnel.Metrics
	Registry *prometheus.Registry
}

// Hooks connects a UI to the session. Both fields are optional.
type Hooks struct {
	// OnURL returns the callback for the tunnel called name.
	OnURL func(name string) tunnel.URLCallback
	// OnPublished receives the URL list once discovery ends.
	OnPublished tunnel.SessionCallback
}

// InitializeServices builds the tunnel described by cfg.TunnelctlConfig.
func InitializeServices(cfg *Config, logger *logging.Logger, hooks Hooks) (*Services, error) {
	if cfg.TunnelctlConfig == nil {
		return nil, fmt.Errorf("configuration has not been loaded")
	}
	tc := cfg.TunnelctlConfig

	defs, err := tc.Definitions()
	if err != nil {
		return nil, err
	}
	if hooks.OnURL != nil {
		for i := range defs {
			defs[i].Callback = hooks.OnURL(defs[i].Name)
		}
	}

	cond, err := tunnel.ParsePortCondition(tc.PortCondition)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := tunnel.NewMetrics(registry)

	opts := []tunnel.Option{
		tunnel.WithCheckLocalPort(tc.PortCheckEnabled()),
		tunnel.WithPortCondition(cond),
		tunnel.WithTimeout(tc.Timeout),
		tunnel.WithDebug(tc.DebugEnabled()),
		tunnel.WithLogger(logger),
		tunnel.WithMetrics(metrics),
	}
	if tc.LogDir != "" {
		opts = append(opts, tunnel.WithLogDir(tc.LogDir))
	}
	if hooks.OnPublished != nil {
		opts = append(opts, tunnel.WithCallback(hooks.OnPublished))
	}

	t, err := tunnel.NewWithTunnels(tc.Port, defs, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to register tunnels: %w", err)
	}

	return &Services{
		Tunnel:   t,
		Metrics:  metrics,
		Registry: registry,
	}, nil
}
