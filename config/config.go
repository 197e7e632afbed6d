package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the complete application configuration
type Config struct {
	Gateway  *GatewayConfig
	Archiver *ArchiverConfig
}

// Default file names looked up by LoadConfig
const (
	GatewayConfigFile  = "gateway.defaults.yml"
	ArchiverConfigFile = "archiver.defaults.yml"
)

// LoadConfig loads all configuration files found in a directory.
// Missing files leave the corresponding section nil.
func LoadConfig(configDir string) (*Config, error) {
	absDir, err := filepath.Abs(configDir)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path of config directory: %w", err)
	}

	config := &Config{}

	gatewayPath := filepath.Join(absDir, GatewayConfigFile)
	if _, err := os.Stat(gatewayPath); err == nil {
		gatewayCfg, err := LoadGatewayConfig(gatewayPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load gateway config: %w", err)
		}
		config.Gateway = gatewayCfg
	}

	archiverPath := filepath.Join(absDir, ArchiverConfigFile)
	if _, err := os.Stat(archiverPath); err == nil {
		archiverCfg, err := LoadArchiverConfig(archiverPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load archiver config: %w", err)
		}
		config.Archiver = archiverCfg
	}

	return config, nil
}
