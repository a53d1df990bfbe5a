package psod

import (
	"encoding/json"
	"fmt"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
)

// RunInput is the request body shared by the HTTP and gRPC APIs. The swarm
// section may be given as JSON or as YAML; missing keys take the defaults.
type RunInput struct {
	Swarm          json.RawMessage `json:"swarm,omitempty"`
	SwarmYAML      string          `json:"swarm_yaml,omitempty"`
	CallbackURL    string          `json:"callback_url,omitempty"`
	CallbackSecret string          `json:"callback_secret,omitempty"`
}

// RunLimits caps the size of a submitted run. A zero field is not enforced.
type RunLimits struct {
	MaxParticles   int
	MaxDimensions  int
	MaxGenerations int
}

// DefaultRunLimits bounds remote submissions until the daemon is configured.
func DefaultRunLimits() RunLimits {
	return RunLimits{
		MaxParticles:   10000,
		MaxDimensions:  1000,
		MaxGenerations: 1000000,
	}
}

func (l RunLimits) check(s *config.SwarmConfig) error {
	limits := []struct {
		field      string
		value, max int
	}{
		{"particle_count", s.ParticleCount, l.MaxParticles},
		{"dimensions", s.Dimensions, l.MaxDimensions},
		{"generations", s.Generations, l.MaxGenerations},
	}
	for _, c := range limits {
		if c.max > 0 && c.value > c.max {
			return fmt.Errorf("%w: %s %d exceeds the server limit of %d", ErrInvalidInput, c.field, c.value, c.max)
		}
	}
	return nil
}

// Spec validates the input against limits and returns the run specification.
func (in *RunInput) Spec(limits RunLimits) (RunSpec, error) {
	if in == nil {
		return RunSpec{}, fmt.Errorf("%w: input is required", ErrInvalidInput)
	}
	if len(in.Swarm) > 0 && in.SwarmYAML != "" {
		return RunSpec{}, fmt.Errorf("%w: swarm and swarm_yaml are mutually exclusive", ErrInvalidInput)
	}

	var swarm *config.SwarmConfig
	if in.SwarmYAML != "" {
		s, err := config.ParseSwarmYAML([]byte(in.SwarmYAML))
		if err != nil {
			return RunSpec{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		swarm = s
	} else {
		s := config.DefaultSwarm()
		if len(in.Swarm) > 0 {
			if err := json.Unmarshal(in.Swarm, &s); err != nil {
				return RunSpec{}, fmt.Errorf("%w: invalid swarm: %w", ErrInvalidInput, err)
			}
		}
		if err := config.ValidateSwarm(&s); err != nil {
			return RunSpec{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		swarm = &s
	}

	if err := limits.check(swarm); err != nil {
		return RunSpec{}, err
	}

	if in.CallbackURL != "" {
		if err := ValidateCallbackURL(in.CallbackURL); err != nil {
			return RunSpec{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	return RunSpec{
		Swarm:          *swarm,
		CallbackURL:    in.CallbackURL,
		CallbackSecret: in.CallbackSecret,
	}, nil
}
