package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tunnelctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/tunnelctl"
	projectConfigDir = ".tunnelctl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the tunnelctl configuration by layering default, user, and project settings.
func LoadConfig() (TunnelctlConfig, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User-specific configuration
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else if config, err = overlayIfExists(config, userConfigPath); err != nil {
		return TunnelctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
	}

	// 3. Project-specific configuration
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else if config, err = overlayIfExists(config, projectConfigPath); err != nil {
		return TunnelctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
	}

	return config, nil
}

// LoadConfigFromPath layers a single explicit file over the defaults. Unlike
// LoadConfig the file must exist.
func LoadConfigFromPath(path string) (TunnelctlConfig, error) {
	fileConfig, err := loadConfigFromFile(path)
	if err != nil {
		return TunnelctlConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return mergeConfigs(GetDefaultConfig(), fileConfig), nil
}

func overlayIfExists(base TunnelctlConfig, path string) (TunnelctlConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return base, err
	}
	logging.Debug("Config", "Loaded configuration layer %s", path)
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a TunnelctlConfig from a YAML file. Unknown keys
// are rejected so typos do not silently fall back to defaults.
func loadConfigFromFile(filePath string) (TunnelctlConfig, error) {
	var config TunnelctlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return TunnelctlConfig{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return TunnelctlConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config.
func mergeConfigs(base, overlay TunnelctlConfig) TunnelctlConfig {
	merged := base

	if overlay.Port != 0 {
		merged.Port = overlay.Port
	}
	if overlay.CheckLocalPort != nil {
		v := *overlay.CheckLocalPort
		merged.CheckLocalPort = &v
	}
	if overlay.PortCondition != "" {
		merged.PortCondition = overlay.PortCondition
	}
	if overlay.Timeout != 0 {
		merged.Timeout = overlay.Timeout
	}
	if overlay.LogDir != "" {
		merged.LogDir = overlay.LogDir
	}
	if overlay.Debug != nil {
		v := *overlay.Debug
		merged.Debug = &v
	}

	// Tunnels merge by name: a later layer replaces an entry in place, new
	// entries are appended, so the first-seen order is kept.
	merged.Tunnels = make([]TunnelDefinition, 0, len(base.Tunnels)+len(overlay.Tunnels))
	index := make(map[string]int)
	for _, td := range append(append([]TunnelDefinition{}, base.Tunnels...), overlay.Tunnels...) {
		if i, ok := index[td.key()]; ok {
			merged.Tunnels[i] = td
			continue
		}
		index[td.key()] = len(merged.Tunnels)
		merged.Tunnels = append(merged.Tunnels, td)
	}

	return merged
}

// SelectTunnels restricts cfg to the named tunnels, in the given order.
// A name that is not configured is looked up among the built-in presets.
func SelectTunnels(cfg TunnelctlConfig, names ...string) (TunnelctlConfig, error) {
	if len(names) == 0 {
		return cfg, nil
	}
	configured := make(map[string]TunnelDefinition, len(cfg.Tunnels))
	for _, td := range cfg.Tunnels {
		configured[td.key()] = td
	}

	selected := make([]TunnelDefinition, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if td, ok := configured[name]; ok {
			selected = append(selected, td)
			continue
		}
		if _, ok := LookupPreset(name); !ok {
			return cfg, fmt.Errorf("unknown tunnel %q: not configured and not a built-in preset", name)
		}
		selected = append(selected, TunnelDefinition{Name: name, Preset: name})
	}
	cfg.Tunnels = selected
	return cfg, nil
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
