package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseConfigYAML parses a Config from YAML bytes and validates it.
// Keys missing from the document keep their Default values.
func ParseConfigYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ParseSwarmYAML parses a bare swarm section, as accepted by the run API.
func ParseSwarmYAML(data []byte) (*SwarmConfig, error) {
	s := DefaultSwarm()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse swarm yaml: %w", err)
	}
	if err := ValidateSwarm(&s); err != nil {
		return nil, fmt.Errorf("invalid swarm: %w", err)
	}
	return &s, nil
}
