package config

import (
	"sort"

	"tunnelctl/internal/tunnel"
)

// DefaultPort matches the port used by most local web UIs launched with tunnelctl.
const DefaultPort = 7860

var presets = map[string]TunnelDefinition{
	"cloudflared": {
		Name:    "cloudflared",
		Command: "cloudflared tunnel --url http://localhost:{port}",
		Pattern: `[\w-]+\.trycloudflare\.com`,
		Note:    "(cloudflare quick tunnel)",
	},
	"localhost.run": {
		Name:    "localhost.run",
		Command: "ssh -o StrictHostKeyChecking=no -o ServerAliveInterval=60 -R 80:localhost:{port} nokey@localhost.run",
		Pattern: `[\w-]+\.lhr\.life`,
	},
	"serveo": {
		Name:    "serveo",
		Command: "ssh -o StrictHostKeyChecking=no -o ServerAliveInterval=60 -R 80:localhost:{port} serveo.net",
		Pattern: `https://[\w-]+\.serveo(usercontent)?\.(net|com)`,
	},
	"bore": {
		Name:    "bore",
		Command: "bore local {port} --to bore.pub",
		Pattern: `bore\.pub:\d+`,
		Note:    "(plain TCP, no TLS)",
	},
	"ngrok": {
		Name:    "ngrok",
		Command: "ngrok http {port} --log stdout",
		Pattern: `https://[\w-]+\.ngrok(-free)?\.(app|dev|io)`,
		Note:    "(requires an ngrok authtoken)",
	},
}

// Presets returns the built-in tunnel definitions sorted by name.
func Presets() []TunnelDefinition {
	out := make([]TunnelDefinition, 0, len(presets))
	for _, p := range presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPreset returns the built-in definition called name.
func LookupPreset(name string) (TunnelDefinition, bool) {
	p, ok := presets[name]
	return p, ok
}

// GetDefaultConfig returns the default configuration for tunnelctl.
// It has no tunnels; those come from config files or --tunnel flags.
func GetDefaultConfig() TunnelctlConfig {
	checkLocalPort := true
	return TunnelctlConfig{
		Port:           DefaultPort,
		CheckLocalPort: &checkLocalPort,
		PortCondition:  tunnel.WaitPortBound.String(),
		Timeout:        tunnel.DefaultTimeout,
		Tunnels:        []TunnelDefinition{},
	}
}
