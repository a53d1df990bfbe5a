package config

import "github.com/GoSim-25-26J-441/swarm-core/internal/engine"

// Config represents the main optimizer configuration
type Config struct {
	LogLevel  string       `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"` // json or text
	Swarm     SwarmConfig  `yaml:"swarm"`
	Output    OutputConfig `yaml:"output"`
	Server    ServerConfig `yaml:"server"`
}

// SwarmConfig holds the optimization parameters of a run
type SwarmConfig struct {
	ParticleCount        int     `yaml:"particle_count" json:"particle_count"`
	Dimensions           int     `yaml:"dimensions" json:"dimensions"`
	Generations          int     `yaml:"generations" json:"generations"`
	InertiaWeight        float64 `yaml:"inertia_weight" json:"inertia_weight"`
	CognitiveCoefficient float64 `yaml:"cognitive_coefficient" json:"cognitive_coefficient"`
	SocialCoefficient    float64 `yaml:"social_coefficient" json:"social_coefficient"`
	InitBounds           Bounds  `yaml:"init_bounds" json:"init_bounds"`
	InitSampling         string  `yaml:"init_sampling" json:"init_sampling"` // integer or uniform
	Objective            string  `yaml:"objective" json:"objective"`
	Seed                 int64   `yaml:"seed" json:"seed"` // 0 derives a seed from the clock
	Refine               bool    `yaml:"refine" json:"refine"`
}

// Bounds is a closed interval used for initial positions
type Bounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// OutputConfig controls the visualization sinks
type OutputConfig struct {
	PlotDir         string  `yaml:"plot_dir"`
	PlotEvery       int     `yaml:"plot_every"`
	PlotLimit       float64 `yaml:"plot_limit"`
	ConvergencePlot bool    `yaml:"convergence_plot"`
	LogEvery        int     `yaml:"log_every"`
}

// ServerConfig configures the psod daemon
type ServerConfig struct {
	GRPCAddr        string         `yaml:"grpc_addr"`
	HTTPAddr        string         `yaml:"http_addr"`
	MaxRuns         int            `yaml:"max_runs"` // concurrent runs, 0 means unlimited
	MaxParticles    int            `yaml:"max_particles"`
	MaxDimensions   int            `yaml:"max_dimensions"`
	MaxGenerations  int            `yaml:"max_generations"`
	CallbackBackoff CallbackConfig `yaml:"callback_backoff"`
}

// CallbackConfig controls retries of completion callbacks
type CallbackConfig struct {
	Type       string `yaml:"type"` // constant or exponential
	BaseMs     int    `yaml:"base_ms"`
	MaxMs      int    `yaml:"max_ms"`
	MaxRetries int    `yaml:"max_retries"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Swarm:     DefaultSwarm(),
		Output: OutputConfig{
			PlotEvery: 1,
			PlotLimit: 10,
			LogEvery:  1,
		},
		Server: ServerConfig{
			GRPCAddr:       ":50051",
			HTTPAddr:       ":8080",
			MaxRuns:        8,
			MaxParticles:   10000,
			MaxDimensions:  1000,
			MaxGenerations: 1000000,
			CallbackBackoff: CallbackConfig{
				Type:       "exponential",
				BaseMs:     500,
				MaxMs:      30000,
				MaxRetries: 3,
			},
		},
	}
}

// DefaultSwarm returns the reference swarm parameters.
func DefaultSwarm() SwarmConfig {
	p := engine.DefaultParams()
	return SwarmConfig{
		ParticleCount:        p.ParticleCount,
		Dimensions:           p.Dimensions,
		Generations:          p.Generations,
		InertiaWeight:        p.Inertia,
		CognitiveCoefficient: p.Cognitive,
		SocialCoefficient:    p.Social,
		InitBounds:           Bounds{Min: p.InitMin, Max: p.InitMax},
		InitSampling:         string(p.InitSampling),
		Objective:            "rastrigin",
	}
}

// Params converts the swarm section to engine parameters.
func (s *SwarmConfig) Params() engine.Params {
	return engine.Params{
		ParticleCount: s.ParticleCount,
		Dimensions:    s.Dimensions,
		Generations:   s.Generations,
		Inertia:       s.InertiaWeight,
		Cognitive:     s.CognitiveCoefficient,
		Social:        s.SocialCoefficient,
		InitMin:       s.InitBounds.Min,
		InitMax:       s.InitBounds.Max,
		InitSampling:  engine.Sampling(s.InitSampling),
	}
}
