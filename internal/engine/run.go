package engine

import (
	"context"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/internal/swarm"
)

// State is the lifecycle of an engine.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateRunning
	StateTerminated
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Snapshot is the read-only view handed to observers after each generation.
// All slices are copies.
type Snapshot struct {
	// Generation is 1-based.
	Generation      int
	Positions       [][]float64
	BestValues      []float64
	GlobalBest      []float64
	GlobalBestValue float64
}

// Observer receives one snapshot per completed generation, in order.
type Observer interface {
	Observe(Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) Observe(s Snapshot) { f(s) }

// Observers fans a snapshot out to each observer in order.
type Observers []Observer

func (o Observers) Observe(s Snapshot) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(s)
		}
	}
}

// Result is the outcome of a completed run.
type Result struct {
	Best        []float64
	BestValue   float64
	Generations int
	Evaluations int
	// Seed is the effective seed when the random source reports one.
	Seed     int64
	Duration time.Duration
	Swarm    *swarm.Swarm
}

// Run initializes the swarm if needed and advances it Generations times,
// calling obs after every generation. ctx is checked between generations;
// on cancellation Run returns ctx.Err() and the engine stays usable for
// inspection in StateCancelled.
func (e *Engine) Run(ctx context.Context, obs Observer) (*Result, error) {
	start := time.Now()

	if e.state == StateUninitialized {
		if _, err := e.Initialize(); err != nil {
			return nil, err
		}
	} else if e.state != StateInitialized {
		return nil, ErrEngineUsed
	}

	e.logger.Info("Optimization started",
		"objective", e.objective.Name(),
		"particles", e.params.ParticleCount,
		"dimensions", e.params.Dimensions,
		"generations", e.params.Generations)

	for e.generation < e.params.Generations {
		select {
		case <-ctx.Done():
			e.state = StateCancelled
			e.logger.Info("Optimization cancelled", "generation", e.generation)
			return nil, ctx.Err()
		default:
		}

		if err := e.Step(); err != nil {
			e.logger.Error("Optimization failed", "generation", e.generation+1, "error", err)
			return nil, err
		}

		e.logger.Debug("Generation completed",
			"generation", e.generation,
			"global_best_value", e.swarm.GlobalBestValue)

		if obs != nil {
			obs.Observe(e.snapshot())
		}
	}

	e.state = StateTerminated
	res := &Result{
		Best:        append([]float64(nil), e.swarm.GlobalBest...),
		BestValue:   e.swarm.GlobalBestValue,
		Generations: e.generation,
		Evaluations: e.evaluations,
		Duration:    time.Since(start),
		Swarm:       e.swarm.Clone(),
	}
	if seeded, ok := e.rng.(interface{ Seed() int64 }); ok {
		res.Seed = seeded.Seed()
	}

	e.logger.Info("Optimization completed",
		"generations", res.Generations,
		"best_value", res.BestValue,
		"best", res.Best,
		"duration", res.Duration)
	return res, nil
}

func (e *Engine) snapshot() Snapshot {
	s := e.swarm
	return Snapshot{
		Generation:      e.generation,
		Positions:       s.Positions(),
		BestValues:      s.BestValues(),
		GlobalBest:      append([]float64(nil), s.GlobalBest...),
		GlobalBestValue: s.GlobalBestValue,
	}
}
