// Package engine runs the particle swarm update rule over a swarm.Swarm.
//
// One generation is two passes over the particles. The first pass evaluates
// every position in index order and refreshes personal and global bests, so a
// particle later in the order already sees an improvement made earlier in the
// same pass. The second pass moves every particle using the bests from the
// first pass.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/GoSim-25-26J-441/swarm-core/internal/objective"
	"github.com/GoSim-25-26J-441/swarm-core/internal/swarm"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

// RandSource is the randomness the engine consumes. *utils.RandSource
// satisfies it.
type RandSource interface {
	Float64() float64
	IntRange(lo, hi int) int
	UniformFloat64(min, max float64) float64
}

// Engine owns one swarm and advances it a generation at a time. It is not
// safe for concurrent use.
type Engine struct {
	params      Params
	objective   objective.Objective
	rng         RandSource
	logger      *slog.Logger
	swarm       *swarm.Swarm
	state       State
	generation  int
	evaluations int
}

// New validates params and returns an engine in StateUninitialized. A nil rng
// is replaced by a clock-seeded source.
func New(params Params, obj objective.Objective, rng RandSource) (*Engine, error) {
	if params.InitSampling == "" {
		params.InitSampling = SamplingInteger
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, &InvalidConfigurationError{Field: "objective", Reason: "is required"}
	}
	if rng == nil {
		rng = utils.NewRandSource(0)
	}
	return &Engine{
		params:    params,
		objective: obj,
		rng:       rng,
		logger:    logger.Default,
		state:     StateUninitialized,
	}, nil
}

// SetLogger sets the engine's logger
func (e *Engine) SetLogger(l *slog.Logger) {
	e.logger = l
}

// Params returns the validated parameters.
func (e *Engine) Params() Params { return e.params }

// Swarm returns the live swarm, or nil before Initialize.
func (e *Engine) Swarm() *swarm.Swarm { return e.swarm }

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Generation returns the number of completed generations.
func (e *Engine) Generation() int { return e.generation }

// Evaluations returns how many times the objective has been called.
func (e *Engine) Evaluations() int { return e.evaluations }

// Initialize builds the swarm: positions are drawn from the init bounds,
// velocities are zero and each personal best is the starting position. The
// particles are then sorted by value and particle 0 seeds the global best.
func (e *Engine) Initialize() (*swarm.Swarm, error) {
	if e.state != StateUninitialized {
		return nil, ErrEngineUsed
	}

	s := swarm.New(e.params.ParticleCount, e.params.Dimensions)
	for i := range s.Particles {
		p := &s.Particles[i]
		for d := range p.Position {
			x := e.sample()
			p.Position[d] = x
			p.PersonalBest[d] = x
		}
	}

	for i := range s.Particles {
		value, err := e.evaluate(s.Particles[i].Position)
		if err != nil {
			e.state = StateFailed
			return nil, &ObjectiveEvaluationError{Generation: 0, Particle: i, Err: err}
		}
		s.Particles[i].BestValue = value
	}

	swarm.SortByObjective(s)
	swarm.InitializeGlobalBest(s)

	e.swarm = s
	e.state = StateInitialized

	e.logger.Debug("Swarm initialized",
		"particles", s.Len(),
		"dimensions", s.Dimensions,
		"objective", e.objective.Name(),
		"global_best_value", s.GlobalBestValue)
	return s, nil
}

// Step advances the swarm by one generation. On an objective error the step
// stops before any particle moves and the engine enters StateFailed.
func (e *Engine) Step() error {
	switch e.state {
	case StateInitialized, StateRunning:
	default:
		return fmt.Errorf("cannot step engine in state %s", e.state)
	}
	e.state = StateRunning

	gen := e.generation + 1
	if err := e.updateBests(gen); err != nil {
		e.state = StateFailed
		return err
	}
	e.move()
	e.generation = gen
	return nil
}

// updateBests is the first pass. Particles are visited in index order and
// the global best is refreshed immediately after each particle.
func (e *Engine) updateBests(gen int) error {
	s := e.swarm
	for i := range s.Particles {
		p := &s.Particles[i]
		value, err := e.evaluate(p.Position)
		if err != nil {
			return &ObjectiveEvaluationError{Generation: gen, Particle: i, Err: err}
		}
		if value < p.BestValue {
			swarm.UpdatePersonalBest(s, i, value)
		}
		if p.BestValue < s.GlobalBestValue {
			swarm.UpdateGlobalBest(s, i)
		}
	}
	return nil
}

// move is the second pass: v = w*v + c1*r1*(pbest-x) + c2*r2*(gbest-x), then
// x += v. r1 and r2 are drawn fresh per particle per dimension.
func (e *Engine) move() {
	s := e.swarm
	w, c1, c2 := e.params.Inertia, e.params.Cognitive, e.params.Social
	for i := range s.Particles {
		p := &s.Particles[i]
		for d := range p.Velocity {
			r1 := e.rng.Float64()
			r2 := e.rng.Float64()
			p.Velocity[d] = w*p.Velocity[d] +
				c1*r1*(p.PersonalBest[d]-p.Position[d]) +
				c2*r2*(s.GlobalBest[d]-p.Position[d])
			p.Position[d] += p.Velocity[d]
		}
	}
}

func (e *Engine) sample() float64 {
	if e.params.InitSampling == SamplingUniform {
		return e.rng.UniformFloat64(e.params.InitMin, e.params.InitMax)
	}
	lo, hi, _ := utils.IntBounds(e.params.InitMin, e.params.InitMax)
	return float64(e.rng.IntRange(lo, hi))
}

func (e *Engine) evaluate(pos []float64) (float64, error) {
	e.evaluations++
	return e.objective.Evaluate(pos)
}
