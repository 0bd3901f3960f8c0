// Package config provides configuration management for tunnelctl.
//
// This package implements a layered configuration system that allows users to
// customize tunnelctl's behavior through YAML files. Configuration is loaded from
// multiple sources and merged in a specific order, with later sources overriding
// earlier ones.
//
// # Configuration Layers
//
// Configuration is loaded and merged in the following order:
//
//  1. Default Configuration (embedded in binary)
//     - Port 7860, port check enabled, 60s discovery timeout
//     - No tunnels; pick some with --tunnel or a config file
//
//  2. User Configuration (~/.config/tunnelctl/config.yaml)
//     - User-specific settings that apply to all projects
//
//  3. Project Configuration (./.tunnelctl/config.yaml)
//     - Project-specific settings in the current directory
//     - Allows teams to share configuration via version control
//
// An explicit file passed with --config replaces layers 2 and 3.
//
// # Configuration Structure
//
//	port: 7860
//	checkLocalPort: true
//	portCondition: bound   # or free
//	timeout: 60s
//	logDir: ./logs
//	debug: false
//	tunnels:
//	  - name: cloudflared
//	    command: cloudflared tunnel --url http://localhost:{port}
//	    pattern: '[\w-]+\.trycloudflare\.com'
//	    note: "(cloudflare quick tunnel)"
//	  - preset: bore
//
// # Tunnel Merging
//
// Tunnels are merged by name. A later layer replaces an entry with the same
// name in place and appends new names, so the order in which tunnels were
// first declared is kept. An entry that only sets preset is expanded from the
// built-in presets (see Presets); any field set next to it overrides the preset.
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err = config.SelectTunnels(cfg, "cloudflared", "bore")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	defs, _ := cfg.Definitions()
package config
