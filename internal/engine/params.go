package engine

import (
	"math"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

// Sampling selects how initial positions are drawn from the bounds.
type Sampling string

const (
	// SamplingInteger draws whole numbers uniformly from [min, max].
	SamplingInteger Sampling = "integer"
	// SamplingUniform draws reals uniformly from [min, max).
	SamplingUniform Sampling = "uniform"
)

const (
	DefaultParticleCount = 50
	DefaultDimensions    = 2
	DefaultGenerations   = 100
	DefaultInertia       = 0.5
	DefaultCognitive     = 1.47
	DefaultSocial        = 1.47
	DefaultInitMin       = -20.0
	DefaultInitMax       = 20.0
)

// Params holds the tunables of one optimization run.
type Params struct {
	ParticleCount int
	Dimensions    int
	Generations   int

	// Inertia (w), Cognitive (c1) and Social (c2) weight the previous
	// velocity, the pull to the personal best and the pull to the global best.
	Inertia   float64
	Cognitive float64
	Social    float64

	InitMin      float64
	InitMax      float64
	InitSampling Sampling
}

// DefaultParams returns the reference configuration: 50 particles in 2
// dimensions for 100 generations, w = 0.5, c1 = c2 = 1.47, integer
// positions in [-20, 20].
func DefaultParams() Params {
	return Params{
		ParticleCount: DefaultParticleCount,
		Dimensions:    DefaultDimensions,
		Generations:   DefaultGenerations,
		Inertia:       DefaultInertia,
		Cognitive:     DefaultCognitive,
		Social:        DefaultSocial,
		InitMin:       DefaultInitMin,
		InitMax:       DefaultInitMax,
		InitSampling:  SamplingInteger,
	}
}

// Validate returns an *InvalidConfigurationError for the first bad field.
func (p Params) Validate() error {
	if p.ParticleCount <= 0 {
		return &InvalidConfigurationError{Field: "particle_count", Reason: "must be positive"}
	}
	if p.Dimensions <= 0 {
		return &InvalidConfigurationError{Field: "dimensions", Reason: "must be positive"}
	}
	if p.Generations < 0 {
		return &InvalidConfigurationError{Field: "generations", Reason: "cannot be negative"}
	}

	coefficients := []struct {
		field string
		value float64
	}{
		{"inertia_weight", p.Inertia},
		{"cognitive_coefficient", p.Cognitive},
		{"social_coefficient", p.Social},
	}
	for _, c := range coefficients {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &InvalidConfigurationError{Field: c.field, Reason: "must be finite"}
		}
		if c.value < 0 {
			return &InvalidConfigurationError{Field: c.field, Reason: "cannot be negative"}
		}
	}

	if math.IsNaN(p.InitMin) || math.IsInf(p.InitMin, 0) || math.IsNaN(p.InitMax) || math.IsInf(p.InitMax, 0) {
		return &InvalidConfigurationError{Field: "init_bounds", Reason: "must be finite"}
	}
	if p.InitMin >= p.InitMax {
		return &InvalidConfigurationError{Field: "init_bounds", Reason: "min must be less than max"}
	}

	switch p.InitSampling {
	case SamplingInteger, "":
		if math.Abs(p.InitMin) > utils.MaxSafeInt || math.Abs(p.InitMax) > utils.MaxSafeInt {
			return &InvalidConfigurationError{Field: "init_bounds", Reason: "exceed the exact integer range for integer sampling"}
		}
		if _, _, ok := utils.IntBounds(p.InitMin, p.InitMax); !ok {
			return &InvalidConfigurationError{Field: "init_bounds", Reason: "contain no integer for integer sampling"}
		}
	case SamplingUniform:
	default:
		return &InvalidConfigurationError{Field: "init_sampling", Reason: "must be integer or uniform"}
	}

	return nil
}
