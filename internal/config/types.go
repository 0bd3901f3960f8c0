package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"tunnelctl/internal/tunnel"
)

// TunnelctlConfig is the top-level configuration structure for tunnelctl.
type TunnelctlConfig struct {
	Port           int                `yaml:"port,omitempty"`           // Local port the tunnels expose
	CheckLocalPort *bool              `yaml:"checkLocalPort,omitempty"` // Wait for the port before launching (default: true)
	PortCondition  string             `yaml:"portCondition,omitempty"`  // "bound" (default) or "free"
	Timeout        time.Duration      `yaml:"timeout,omitempty"`        // URL discovery timeout, e.g. "60s"
	LogDir         string             `yaml:"logDir,omitempty"`         // Directory for tunnel_<name>.log files
	Debug          *bool              `yaml:"debug,omitempty"`          // Raw tunnel output on the console
	Tunnels        []TunnelDefinition `yaml:"tunnels,omitempty"`
}

// TunnelDefinition describes one tunnel provider invocation.
// An entry that only names a Preset is filled from the built-in presets.
type TunnelDefinition struct {
	Name    string `yaml:"name,omitempty"`
	Preset  string `yaml:"preset,omitempty"`
	Command string `yaml:"command,omitempty"` // May contain {port}
	Pattern string `yaml:"pattern,omitempty"` // Regular expression matching the public URL
	Note    string `yaml:"note,omitempty"`
}

// PortCheckEnabled reports whether tunnels wait for the local port. Unset means true.
func (c TunnelctlConfig) PortCheckEnabled() bool {
	return c.CheckLocalPort == nil || *c.CheckLocalPort
}

// DebugEnabled reports whether raw tunnel output goes to the console. Unset means false.
func (c TunnelctlConfig) DebugEnabled() bool {
	return c.Debug != nil && *c.Debug
}

// ResolvedTunnels returns the tunnel list with preset references expanded.
// Fields set on the entry itself take precedence over the preset.
func (c TunnelctlConfig) ResolvedTunnels() ([]TunnelDefinition, error) {
	out := make([]TunnelDefinition, 0, len(c.Tunnels))
	for _, td := range c.Tunnels {
		resolved, err := td.resolve()
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}

func (td TunnelDefinition) resolve() (TunnelDefinition, error) {
	if td.Preset == "" {
		return td, nil
	}
	preset, ok := LookupPreset(td.Preset)
	if !ok {
		return TunnelDefinition{}, fmt.Errorf("unknown tunnel preset %q", td.Preset)
	}
	if td.Name != "" {
		preset.Name = td.Name
	}
	if td.Command != "" {
		preset.Command = td.Command
	}
	if td.Pattern != "" {
		preset.Pattern = td.Pattern
	}
	if td.Note != "" {
		preset.Note = td.Note
	}
	return preset, nil
}

// key identifies a definition when layers are merged.
func (td TunnelDefinition) key() string {
	if td.Name != "" {
		return td.Name
	}
	return td.Preset
}

// Definitions converts the resolved tunnel list into registrations for a tunnel.Tunnel.
func (c TunnelctlConfig) Definitions() ([]tunnel.Definition, error) {
	tds, err := c.ResolvedTunnels()
	if err != nil {
		return nil, err
	}
	defs := make([]tunnel.Definition, 0, len(tds))
	for _, td := range tds {
		defs = append(defs, tunnel.Definition{
			Name:    td.Name,
			Command: td.Command,
			Pattern: td.Pattern,
			Note:    td.Note,
		})
	}
	return defs, nil
}

// Validate checks the configuration and reports every invalid field at once.
func (c TunnelctlConfig) Validate() error {
	ve := &tunnel.ValidationError{Subject: "configuration"}
	add := func(field, format string, args ...interface{}) {
		ve.Fields = append(ve.Fields, tunnel.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Port < 1 || c.Port > 65535 {
		add("port", "must be between 1 and 65535, got %d", c.Port)
	}
	if _, err := tunnel.ParsePortCondition(c.PortCondition); err != nil {
		add("portCondition", "%v", err)
	}
	if c.Timeout < 0 {
		add("timeout", "must not be negative")
	}

	seen := make(map[string]bool)
	for i, td := range c.Tunnels {
		field := fmt.Sprintf("tunnels[%d]", i)
		resolved, err := td.resolve()
		if err != nil {
			add(field+".preset", "%v", err)
			continue
		}
		if strings.TrimSpace(resolved.Name) == "" {
			add(field+".name", "is required")
		} else if seen[resolved.Name] {
			add(field+".name", "duplicate tunnel name %q", resolved.Name)
		} else {
			seen[resolved.Name] = true
		}
		if strings.TrimSpace(resolved.Command) == "" {
			add(field+".command", "is required")
		}
		if resolved.Pattern == "" {
			add(field+".pattern", "is required")
		} else if _, err := regexp.Compile(resolved.Pattern); err != nil {
			add(field+".pattern", "%v", err)
		}
	}

	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}
