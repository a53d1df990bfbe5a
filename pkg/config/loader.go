package config

import (
	"fmt"
	"os"

	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", cfg.LogFormat)
	}

	if err := ValidateSwarm(&cfg.Swarm); err != nil {
		return fmt.Errorf("swarm validation failed: %w", err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}

	return nil
}

// ValidateSwarm checks the swarm section. Engine parameter errors are
// returned unwrapped so callers can match engine.ErrInvalidConfiguration.
func ValidateSwarm(s *SwarmConfig) error {
	if _, err := objective.New(s.Objective); err != nil {
		return err
	}
	return s.Params().Validate()
}

// validateOutput validates the visualization settings
func validateOutput(o *OutputConfig) error {
	if o.PlotEvery < 0 {
		return fmt.Errorf("plot_every cannot be negative, got %d", o.PlotEvery)
	}
	if o.PlotLimit <= 0 {
		return fmt.Errorf("plot_limit must be positive, got %f", o.PlotLimit)
	}
	if o.LogEvery < 0 {
		return fmt.Errorf("log_every cannot be negative, got %d", o.LogEvery)
	}
	return nil
}

func validateServer(s *ServerConfig) error {
	limits := []struct {
		field string
		value int
	}{
		{"max_runs", s.MaxRuns},
		{"max_particles", s.MaxParticles},
		{"max_dimensions", s.MaxDimensions},
		{"max_generations", s.MaxGenerations},
		{"callback_backoff.base_ms", s.CallbackBackoff.BaseMs},
		{"callback_backoff.max_ms", s.CallbackBackoff.MaxMs},
		{"callback_backoff.max_retries", s.CallbackBackoff.MaxRetries},
	}
	for _, l := range limits {
		if l.value < 0 {
			return fmt.Errorf("%s cannot be negative, got %d", l.field, l.value)
		}
	}
	switch s.CallbackBackoff.Type {
	case "", "constant", "exponential":
	default:
		return fmt.Errorf("callback_backoff.type must be constant or exponential, got %q", s.CallbackBackoff.Type)
	}
	return nil
}
